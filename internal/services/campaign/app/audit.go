package app

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/adventuring.party/internal/platform/httpx"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
)

// AuditEmitter appends operation audit events with trace correlation. Emit
// failures only log; audit never blocks the operation it records.
type AuditEmitter struct {
	store storage.AuditEventStore
	clock func() time.Time
}

// NewAuditEmitter wraps an audit event store. A nil store disables emission.
func NewAuditEmitter(store storage.AuditEventStore, clock func() time.Time) *AuditEmitter {
	if clock == nil {
		clock = time.Now
	}
	return &AuditEmitter{store: store, clock: clock}
}

// Emit appends one audit event, picking up trace/span ids from the active
// span and the request id from the context.
func (e *AuditEmitter) Emit(ctx context.Context, eventName, campaignID, actorID string, attributes map[string]any) {
	if e == nil || e.store == nil {
		return
	}

	event := storage.AuditEvent{
		EventName:  eventName,
		Severity:   "info",
		CampaignID: campaignID,
		ActorID:    actorID,
		RequestID:  httpx.RequestIDFromContext(ctx),
		Attributes: attributes,
		Timestamp:  e.clock().UTC(),
	}
	if spanContext := trace.SpanContextFromContext(ctx); spanContext.IsValid() {
		event.TraceID = spanContext.TraceID().String()
		event.SpanID = spanContext.SpanID().String()
	}
	if err := e.store.AppendAuditEvent(ctx, event); err != nil {
		log.Printf("audit emit failed event=%s campaign=%s: %v", eventName, campaignID, err)
	}
}
