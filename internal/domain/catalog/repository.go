package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Insert(ctx context.Context, product *Product) error
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*Product, error)

	// Reserve and Release adjust stock atomically per product and return the new stock.
	Reserve(ctx context.Context, id int64, quantity int) (int, error)
	Release(ctx context.Context, id int64, quantity int) (int, error)
}
