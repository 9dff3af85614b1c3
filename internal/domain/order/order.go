package order

import (
	"fmt"
	"time"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = fmt.Errorf("order: %w", apperr.ErrNotFound)
	ErrConflict          = fmt.Errorf("order: %w", apperr.ErrConflict)
	ErrNoItems           = fmt.Errorf("order: must contain at least one item: %w", apperr.ErrInvalidInput)
	ErrInvalidQuantity   = fmt.Errorf("order: quantity must be greater than zero: %w", apperr.ErrInvalidInput)
	ErrUserRequired      = fmt.Errorf("order: user id is required: %w", apperr.ErrInvalidInput)
	ErrInvalidStatus     = fmt.Errorf("order: unknown status: %w", apperr.ErrInvalidInput)
	ErrInvalidTransition = fmt.Errorf("order: %w", apperr.ErrInvalidTransition)
	ErrCannotCancel      = fmt.Errorf("order: cannot cancel order in current status: %w", apperr.ErrInvalidTransition)
)

// LineItem is one product entry of an order. UnitPrice is the catalog price at
// creation time and is never refreshed from the catalog.
type LineItem struct {
	ID        int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Order struct {
	ID          int64
	UserID      int64
	OrderNumber string
	Items       []LineItem
	TotalPrice  decimal.Decimal
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds a PENDING order and computes its total once from the line-item snapshots.
func New(id, userID int64, orderNumber string, items []LineItem, now time.Time) (*Order, error) {
	if userID <= 0 {
		return nil, ErrUserRequired
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	total := decimal.Zero
	lines := make([]LineItem, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		lines[i] = item
		total = total.Add(item.Subtotal())
	}

	now = now.UTC()
	return &Order{
		ID:          id,
		UserID:      userID,
		OrderNumber: orderNumber,
		Items:       lines,
		TotalPrice:  total,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TransitionTo moves the order to next if the transition table allows it.
func (o *Order) TransitionTo(next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("%w: cannot update order from %s to %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.touch()
	return nil
}

// Cancel applies the customer-facing cancellation rule: only PENDING and CONFIRMED orders qualify.
func (o *Order) Cancel() error {
	if !o.Cancellable() {
		return fmt.Errorf("%w: status %s", ErrCannotCancel, o.Status)
	}
	o.Status = StatusCancelled
	o.touch()
	return nil
}

func (o *Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
