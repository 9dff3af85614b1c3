package workerpresentation

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/petstore-core/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/observability/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSubscriber struct {
	names []string
}

func (s *recordingSubscriber) Subscribe(name string, _ domoutbox.Handler) {
	s.names = append(s.names, name)
}

func newObservedLog(t *testing.T, lowStock int) (*EventLog, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewEventLog(zaplogger.Wrap(zap.New(core)), observability.Nop(), lowStock), logs
}

func TestEventLogRegistersWildcard(t *testing.T) {
	l, _ := newObservedLog(t, DefaultLowStockThreshold)
	sub := &recordingSubscriber{}

	l.Register(sub)

	assert.Equal(t, []string{domoutbox.AllEvents}, sub.names)
}

func TestEventLogWritesDomainEvent(t *testing.T) {
	l, logs := newObservedLog(t, DefaultLowStockThreshold)

	o := &domorder.Order{ID: 3001, UserID: 7, Status: domorder.StatusConfirmed}
	require.NoError(t, l.Handle(context.Background(), domorder.NewOrderStatusChangedEvent(o, domorder.StatusPending)))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "domain_event", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "order.status_changed", fields["event"])
	assert.Equal(t, "event_log", fields["component"])
	assert.Equal(t, "PENDING", fields["from"])
	assert.Equal(t, "CONFIRMED", fields["to"])
	assert.NotEmpty(t, fields["event_id"])
}

func TestEventLogWarnsOnLowStock(t *testing.T) {
	l, logs := newObservedLog(t, 5)

	require.NoError(t, l.Handle(context.Background(), catalog.NewStockReservedEvent(2012, 4, 4)))
	require.NoError(t, l.Handle(context.Background(), catalog.NewStockReservedEvent(2001, 1, 24)))

	warnings := logs.FilterMessage("stock_low").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(2012), warnings[0].ContextMap()["product_id"])
	assert.Equal(t, 2, logs.FilterMessage("domain_event").Len())
}

func TestWithEventContextCarriesTraceIDs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zaplogger.Wrap(zap.New(core))

	traceID := trace.TraceID{1, 2, 3}
	spanID := trace.SpanID{4, 5, 6}
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	ctx = WithEventContext(ctx, base, map[string]string{"event_id": "evt-1", "event": "order.created", "empty": ""})
	logctx.From(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
	assert.Equal(t, "order.created", fields["event"])
	assert.NotContains(t, fields, "empty")
}

func TestWithEventContextWithoutSpan(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithEventContext(context.Background(), zaplogger.Wrap(zap.New(core)), nil)
	logctx.From(ctx).Info("hello")

	fields := logs.All()[0].ContextMap()
	assert.NotEmpty(t, fields["event_id"])
	assert.NotContains(t, fields, "trace_id")
}
