package payment

import "context"

type Repository interface {
	// Insert stores a new payment. It fails with ErrAlreadyExists when the order already has one.
	Insert(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id int64) (*Payment, error)
	GetByOrder(ctx context.Context, orderID int64) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	// CompareAndSetStatus stores p only while the stored payment is still in
	// expected. Otherwise it fails with ErrStatusChanged.
	CompareAndSetStatus(ctx context.Context, p *Payment, expected Status) error
}
