// Package otel wires opt-in OpenTelemetry tracing for service binaries.
package otel

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/louisbranch/adventuring.party/internal/platform/config"
)

type settings struct {
	Enabled  string `env:"ADVENTURING_PARTY_OTEL_ENABLED"`
	Endpoint string `env:"ADVENTURING_PARTY_OTEL_ENDPOINT"`
}

func (s settings) off() bool {
	return strings.EqualFold(s.Enabled, "false") || s.Endpoint == ""
}

// Setup registers a global OTLP trace provider for the named service.
// Tracing stays off until an endpoint is configured, and
// ADVENTURING_PARTY_OTEL_ENABLED=false forces it off; in either case the
// returned shutdown is a no-op. Callers defer shutdown to flush pending
// spans.
func Setup(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	var cfg settings
	if err := config.ParseEnv(&cfg); err != nil {
		return shutdown, err
	}
	if cfg.off() {
		return shutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return shutdown, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return shutdown, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return provider.Shutdown, nil
}
