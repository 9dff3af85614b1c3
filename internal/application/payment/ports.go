package payment

import (
	"context"

	domorder "github.com/Zhima-Mochi/petstore-core/internal/domain/order"
)

type IDGenerator interface {
	Next() int64
}

// OrderReader is the read-only view of orders a reconciler needs.
type OrderReader interface {
	Get(ctx context.Context, orderID int64) (*domorder.Order, error)
}
