// Package workerpresentation hosts the in-process consumers of the outbox.
package workerpresentation

import (
	"context"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/petstore-core/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/petstore-core/internal/domain/payment"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/observability/logctx"
)

const (
	componentEventLog        = "event_log"
	DefaultLowStockThreshold = 5
)

// EventLog writes one structured line per domain event and warns when a
// reservation leaves a product at or below the low-stock threshold.
type EventLog struct {
	log      observability.Logger
	events   observability.Counter
	lowStock int
}

func NewEventLog(logger observability.Logger, tel observability.Observability, lowStock int) *EventLog {
	tel = observability.OrNop(tel)
	if logger == nil {
		logger = tel.Logger()
	}
	if lowStock < 0 {
		lowStock = DefaultLowStockThreshold
	}
	return &EventLog{
		log:      logger.With(observability.F("component", componentEventLog)),
		events:   tel.Metrics().Counter(observability.MDomainEvents),
		lowStock: lowStock,
	}
}

// Register subscribes the log to every event on sub.
func (l *EventLog) Register(sub domoutbox.Subscriber) {
	if sub == nil {
		return
	}
	sub.Subscribe(domoutbox.AllEvents, l.Handle)
}

func (l *EventLog) Handle(ctx context.Context, e domoutbox.Event) error {
	name := e.EventName()
	ctx = WithEventContext(ctx, l.log, map[string]string{"event": name})
	log := logctx.FromOr(ctx, l.log)

	l.events.Add(1, observability.L("event", name))
	log.Info("domain_event", eventFields(e)...)

	if evt, ok := e.(catalog.StockReservedEvent); ok && evt.Remaining <= l.lowStock {
		log.Warn("stock_low",
			observability.F("product_id", evt.ProductID),
			observability.F("remaining", evt.Remaining),
			observability.F("threshold", l.lowStock),
		)
	}
	return nil
}

func eventFields(e domoutbox.Event) []observability.Field {
	switch evt := e.(type) {
	case catalog.StockReservedEvent:
		return []observability.Field{
			observability.F("product_id", evt.ProductID),
			observability.F("quantity", evt.Quantity),
			observability.F("remaining", evt.Remaining),
		}
	case catalog.StockReleasedEvent:
		return []observability.Field{
			observability.F("product_id", evt.ProductID),
			observability.F("quantity", evt.Quantity),
			observability.F("remaining", evt.Remaining),
		}
	case domorder.OrderCreatedEvent:
		return []observability.Field{
			observability.F("order_id", evt.OrderID),
			observability.F("order_number", evt.OrderNumber),
			observability.F("user_id", evt.UserID),
			observability.F("total", evt.TotalPrice.StringFixed(2)),
		}
	case domorder.OrderStatusChangedEvent:
		return []observability.Field{
			observability.F("order_id", evt.OrderID),
			observability.F("from", string(evt.From)),
			observability.F("to", string(evt.To)),
		}
	case domorder.OrderCancelledEvent:
		return []observability.Field{
			observability.F("order_id", evt.OrderID),
			observability.F("user_id", evt.UserID),
			observability.F("from", string(evt.From)),
		}
	case dompay.PaymentProcessedEvent:
		return []observability.Field{
			observability.F("payment_id", evt.PaymentID),
			observability.F("order_id", evt.OrderID),
			observability.F("amount", evt.Amount.StringFixed(2)),
			observability.F("status", string(evt.Status)),
		}
	case dompay.PaymentRefundedEvent:
		return []observability.Field{
			observability.F("payment_id", evt.PaymentID),
			observability.F("order_id", evt.OrderID),
			observability.F("amount", evt.Amount.StringFixed(2)),
		}
	}
	return nil
}
