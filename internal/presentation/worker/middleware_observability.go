package workerpresentation

import (
	"context"

	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext binds an event-scoped logger onto ctx for work that runs
// outside an HTTP request. trace_id and span_id come from the span already on
// ctx, when it is valid. attrs must stay low-cardinality (event name, peer);
// an empty event_id is replaced with a fresh uuid.
func WithEventContext(ctx context.Context, base observability.Logger, attrs map[string]string) context.Context {
	if base == nil {
		base = observability.NopLogger()
	}

	fields := make([]observability.Field, 0, len(attrs)+3)

	eventID := attrs["event_id"]
	if eventID == "" {
		eventID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", eventID))

	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		fields = append(fields, observability.F("trace_id", sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		fields = append(fields, observability.F("span_id", sc.SpanID().String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}
