package order

import (
	"context"

	"github.com/Zhima-Mochi/petstore-core/internal/application/inventory"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
)

type IDGenerator interface {
	Next() int64
}

type OrderNumberGenerator interface {
	Next() string
}

// ProductReader resolves products for price snapshots and stock pre-checks.
type ProductReader interface {
	Get(ctx context.Context, productID int64) (*catalog.Product, error)
}

// StockLedger reserves and releases stock for whole orders.
type StockLedger interface {
	ReserveAll(ctx context.Context, lines []inventory.Line) error
	ReleaseAll(ctx context.Context, lines []inventory.Line) error
}
