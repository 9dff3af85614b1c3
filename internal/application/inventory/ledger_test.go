package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventName()
	}
	return out
}

func setup(t *testing.T, stocks ...int) (*Ledger, *memory.ProductRepository, *capturePublisher, []int64) {
	t.Helper()
	repo := memory.NewProductRepository()
	ids := make([]int64, len(stocks))
	for i, stock := range stocks {
		p, err := catalog.New("product", catalog.CategoryEquipment, "", decimal.NewFromInt(1), stock)
		require.NoError(t, err)
		require.NoError(t, repo.Insert(context.Background(), p))
		ids[i] = p.ID
	}
	pub := &capturePublisher{}
	return NewLedger(repo, pub, nil), repo, pub, ids
}

func stockOf(t *testing.T, repo *memory.ProductRepository, productID int64) int {
	t.Helper()
	p, err := repo.Get(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestReserve(t *testing.T) {
	ledger, _, pub, ids := setup(t, 10)
	ctx := context.Background()

	left, err := ledger.Reserve(ctx, ids[0], 3)
	require.NoError(t, err)
	assert.Equal(t, 7, left)
	assert.Equal(t, []string{"inventory.stock_reserved"}, pub.names())

	_, err = ledger.Reserve(ctx, ids[0], 8)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	_, err = ledger.Reserve(ctx, ids[0], 0)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = ledger.Reserve(ctx, 777, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReleaseHasNoUpperBound(t *testing.T) {
	ledger, _, _, ids := setup(t, 1)

	stock, err := ledger.Release(context.Background(), ids[0], 100)
	require.NoError(t, err)
	assert.Equal(t, 101, stock)

	_, err = ledger.Release(context.Background(), ids[0], -2)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestReserveAllCompensatesPartialFailure(t *testing.T) {
	ledger, repo, _, ids := setup(t, 5, 5, 1)

	err := ledger.ReserveAll(context.Background(), []Line{
		{ProductID: ids[0], Quantity: 2},
		{ProductID: ids[1], Quantity: 3},
		{ProductID: ids[2], Quantity: 2},
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	assert.Equal(t, 5, stockOf(t, repo, ids[0]))
	assert.Equal(t, 5, stockOf(t, repo, ids[1]))
	assert.Equal(t, 1, stockOf(t, repo, ids[2]))
}

func TestReserveAllThenReleaseAllRestoresStock(t *testing.T) {
	ledger, repo, _, ids := setup(t, 5, 9)
	lines := []Line{{ProductID: ids[0], Quantity: 5}, {ProductID: ids[1], Quantity: 4}}
	ctx := context.Background()

	require.NoError(t, ledger.ReserveAll(ctx, lines))
	assert.Equal(t, 0, stockOf(t, repo, ids[0]))
	assert.Equal(t, 5, stockOf(t, repo, ids[1]))

	require.NoError(t, ledger.ReleaseAll(ctx, lines))
	assert.Equal(t, 5, stockOf(t, repo, ids[0]))
	assert.Equal(t, 9, stockOf(t, repo, ids[1]))
}

func TestReleaseAllAttemptsEveryLine(t *testing.T) {
	ledger, repo, _, ids := setup(t, 0)

	err := ledger.ReleaseAll(context.Background(), []Line{
		{ProductID: 999, Quantity: 1},
		{ProductID: ids[0], Quantity: 2},
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 2, stockOf(t, repo, ids[0]))
}

func TestConcurrentReservationsStayNonNegative(t *testing.T) {
	ledger, repo, _, ids := setup(t, 30)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ledger.Reserve(context.Background(), ids[0], 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, stockOf(t, repo, ids[0]))
}
