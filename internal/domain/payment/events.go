package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProcessedEvent is emitted once a charge attempt settled to SUCCESS or FAILED.
type PaymentProcessedEvent struct {
	PaymentID     int64
	OrderID       int64
	Amount        decimal.Decimal
	Status        Status
	TransactionID string
	OccurredAt    time.Time
}

func (PaymentProcessedEvent) EventName() string { return "payment.processed" }

func NewPaymentProcessedEvent(p *Payment) PaymentProcessedEvent {
	return PaymentProcessedEvent{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

type PaymentRefundedEvent struct {
	PaymentID  int64
	OrderID    int64
	Amount     decimal.Decimal
	OccurredAt time.Time
}

func (PaymentRefundedEvent) EventName() string { return "payment.refunded" }

func NewPaymentRefundedEvent(p *Payment) PaymentRefundedEvent {
	return PaymentRefundedEvent{
		PaymentID:  p.ID,
		OrderID:    p.OrderID,
		Amount:     p.Amount,
		OccurredAt: time.Now().UTC(),
	}
}
