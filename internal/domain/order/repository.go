package order

import "context"

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	Get(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	// CompareAndSetStatus persists order only if the stored status still equals expected.
	// It returns ErrConflict when another writer changed the status first.
	CompareAndSetStatus(ctx context.Context, order *Order, expected Status) error
}
