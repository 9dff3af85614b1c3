package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/petstore-core/internal/domain/payment"
)

// PaymentRepository enforces one payment per order inside Insert.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[int64]*domain.Payment
	byOrder  map[int64]int64
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[int64]*domain.Payment),
		byOrder:  make(map[int64]int64),
	}
}

func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	_ = ctx
	if p == nil || p.ID == 0 {
		return fmt.Errorf("payment repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.byOrder[p.OrderID]; exists {
		return fmt.Errorf("%w: order %d has payment %d", domain.ErrAlreadyExists, p.OrderID, existing)
	}
	if _, exists := r.payments[p.ID]; exists {
		return fmt.Errorf("payment repository: duplicate id %d", p.ID)
	}

	r.payments[p.ID] = p.Clone()
	r.byOrder[p.OrderID] = p.ID
	return nil
}

func (r *PaymentRepository) Get(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) GetByOrder(ctx context.Context, orderID int64) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	paymentID, ok := r.byOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.payments[paymentID].Clone(), nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	_ = ctx
	if p == nil || p.ID == 0 {
		return fmt.Errorf("payment repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.payments[p.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if current.OrderID != p.OrderID {
		return fmt.Errorf("payment repository: order of payment %d cannot change", p.ID)
	}
	r.payments[p.ID] = p.Clone()
	return nil
}

func (r *PaymentRepository) CompareAndSetStatus(ctx context.Context, p *domain.Payment, expected domain.Status) error {
	_ = ctx
	if p == nil || p.ID == 0 {
		return fmt.Errorf("payment repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.payments[p.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if current.OrderID != p.OrderID {
		return fmt.Errorf("payment repository: order of payment %d cannot change", p.ID)
	}
	if current.Status != expected {
		return fmt.Errorf("%w: payment %d is %s, expected %s", domain.ErrStatusChanged, p.ID, current.Status, expected)
	}
	r.payments[p.ID] = p.Clone()
	return nil
}
