package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = fmt.Errorf("payment: %w", apperr.ErrNotFound)
	ErrAlreadyExists  = fmt.Errorf("payment: payment already exists for order: %w", apperr.ErrConflict)
	ErrAmountMismatch = fmt.Errorf("payment: amount does not match order total: %w", apperr.ErrValidation)
	ErrNotRefundable  = fmt.Errorf("payment: only successful payments can be refunded: %w", apperr.ErrValidation)
	ErrMethodRequired = fmt.Errorf("payment: method is required: %w", apperr.ErrInvalidInput)
	ErrInvalidState   = fmt.Errorf("payment: %w", apperr.ErrInvalidTransition)
	ErrStatusChanged  = fmt.Errorf("payment: status changed concurrently: %w", apperr.ErrConflict)
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

type Payment struct {
	ID            int64
	OrderID       int64
	Amount        decimal.Decimal
	Status        Status
	Method        string
	TransactionID string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New creates a PENDING payment. Amount reconciliation against the order is the caller's job.
func New(id, orderID int64, amount decimal.Decimal, method, transactionID string) (*Payment, error) {
	if strings.TrimSpace(method) == "" {
		return nil, ErrMethodRequired
	}
	now := time.Now().UTC()
	return &Payment{
		ID:            id,
		OrderID:       orderID,
		Amount:        amount,
		Status:        StatusPending,
		Method:        method,
		TransactionID: transactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (p *Payment) MarkSucceeded() error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: cannot mark %s payment as %s", ErrInvalidState, p.Status, StatusSuccess)
	}
	p.Status = StatusSuccess
	p.touch()
	return nil
}

func (p *Payment) MarkFailed(reason string) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: cannot mark %s payment as %s", ErrInvalidState, p.Status, StatusFailed)
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.touch()
	return nil
}

func (p *Payment) Refund() error {
	if p.Status != StatusSuccess {
		return fmt.Errorf("%w: status %s", ErrNotRefundable, p.Status)
	}
	p.Status = StatusRefunded
	p.touch()
	return nil
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}
