package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/petstore-core/internal/domain/order"
)

// OrderRepository indexes orders by ID, order number and user.
type OrderRepository struct {
	mu       sync.RWMutex
	orders   map[int64]*domain.Order
	byNumber map[string]int64
	byUser   map[int64][]int64
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:   make(map[int64]*domain.Order),
		byNumber: make(map[string]int64),
		byUser:   make(map[int64][]int64),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == 0 {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("%w: duplicate id %d", domain.ErrConflict, order.ID)
	}
	if _, exists := r.byNumber[order.OrderNumber]; exists {
		return fmt.Errorf("%w: duplicate order number %s", domain.ErrConflict, order.OrderNumber)
	}

	r.orders[order.ID] = order.Clone()
	r.byNumber[order.OrderNumber] = order.ID
	r.byUser[order.UserID] = append(r.byUser[order.UserID], order.ID)
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	orderID, ok := r.byNumber[orderNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.orders[orderID].Clone(), nil
}

// ListByUser returns the user's orders in creation order; an unknown user yields an empty slice.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	out := make([]*domain.Order, 0, len(ids))
	for _, orderID := range ids {
		out = append(out, r.orders[orderID].Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *OrderRepository) CompareAndSetStatus(ctx context.Context, order *domain.Order, expected domain.Status) error {
	_ = ctx
	if order == nil || order.ID == 0 {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.orders[order.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if current.Status != expected {
		return fmt.Errorf("%w: order %d is %s, expected %s", domain.ErrConflict, order.ID, current.Status, expected)
	}
	r.orders[order.ID] = order.Clone()
	return nil
}
