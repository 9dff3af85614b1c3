package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(t *testing.T, id, userID int64) *order.Order {
	t.Helper()
	items := []order.LineItem{{ID: id + 1000, ProductID: 2001, Quantity: 1, UnitPrice: decimal.RequireFromString("5.99")}}
	o, err := order.New(id, userID, fmt.Sprintf("ORD-20261018-%05d", id-3000), items, time.Now())
	require.NoError(t, err)
	return o
}

func TestOrderRepositoryIndexes(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	require.NoError(t, repo.Insert(ctx, newOrder(t, 3002, 7)))
	require.NoError(t, repo.Insert(ctx, newOrder(t, 3001, 7)))
	require.NoError(t, repo.Insert(ctx, newOrder(t, 3003, 8)))

	got, err := repo.GetByNumber(ctx, "ORD-20261018-00003")
	require.NoError(t, err)
	assert.Equal(t, int64(3003), got.ID)

	list, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3001), list[0].ID)
	assert.Equal(t, int64(3002), list[1].ID)

	empty, err := repo.ListByUser(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = repo.Get(ctx, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = repo.GetByNumber(ctx, "ORD-nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOrderRepositoryRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := newOrder(t, 3001, 7)
	require.NoError(t, repo.Insert(ctx, o))

	require.ErrorIs(t, repo.Insert(ctx, o), apperr.ErrConflict)

	dupNumber := newOrder(t, 3002, 7)
	dupNumber.OrderNumber = o.OrderNumber
	require.ErrorIs(t, repo.Insert(ctx, dupNumber), apperr.ErrConflict)
}

func TestCompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	require.NoError(t, repo.Insert(ctx, newOrder(t, 3001, 7)))

	first, err := repo.Get(ctx, 3001)
	require.NoError(t, err)
	second, err := repo.Get(ctx, 3001)
	require.NoError(t, err)

	require.NoError(t, first.Cancel())
	require.NoError(t, repo.CompareAndSetStatus(ctx, first, order.StatusPending))

	require.NoError(t, second.Cancel())
	err = repo.CompareAndSetStatus(ctx, second, order.StatusPending)
	require.ErrorIs(t, err, apperr.ErrConflict)

	stored, err := repo.Get(ctx, 3001)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, stored.Status)
}
