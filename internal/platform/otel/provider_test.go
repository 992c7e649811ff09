package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/adventuring.party/internal/platform/otel"
)

func TestSetupNoopWithoutEndpoint(t *testing.T) {
	t.Setenv("ADVENTURING_PARTY_OTEL_ENDPOINT", "")
	t.Setenv("ADVENTURING_PARTY_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupDisabledBeatsEndpoint(t *testing.T) {
	t.Setenv("ADVENTURING_PARTY_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("ADVENTURING_PARTY_OTEL_ENABLED", "false")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
