package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is emitted once an order and its stock reservation are committed.
type OrderCreatedEvent struct {
	OrderID     int64
	OrderNumber string
	UserID      int64
	TotalPrice  decimal.Decimal
	ItemCount   int
	OccurredAt  time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		TotalPrice:  o.TotalPrice,
		ItemCount:   len(o.Items),
		OccurredAt:  time.Now().UTC(),
	}
}

// OrderStatusChangedEvent is emitted for every accepted status transition.
type OrderStatusChangedEvent struct {
	OrderID    int64
	From       Status
	To         Status
	OccurredAt time.Time
}

func (OrderStatusChangedEvent) EventName() string { return "order.status_changed" }

func NewOrderStatusChangedEvent(o *Order, from Status) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:    o.ID,
		From:       from,
		To:         o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderCancelledEvent is emitted after an order was cancelled and its stock released.
type OrderCancelledEvent struct {
	OrderID    int64
	UserID     int64
	From       Status
	OccurredAt time.Time
}

func (OrderCancelledEvent) EventName() string { return "order.cancelled" }

func NewOrderCancelledEvent(o *Order, from Status) OrderCancelledEvent {
	return OrderCancelledEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		From:       from,
		OccurredAt: time.Now().UTC(),
	}
}
