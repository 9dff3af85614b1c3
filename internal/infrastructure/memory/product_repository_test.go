package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, repo *ProductRepository, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.New("Red Guppy Male - Premium", catalog.CategoryGuppies, "", decimal.RequireFromString("5.99"), stock)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), p))
	return p
}

func TestProductRepositoryAssignsIDs(t *testing.T) {
	repo := NewProductRepository()
	a := newProduct(t, repo, 1)
	b := newProduct(t, repo, 1)

	assert.Equal(t, int64(2001), a.ID)
	assert.Equal(t, int64(2002), b.ID)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestProductRepositoryReturnsCopies(t *testing.T) {
	repo := NewProductRepository()
	p := newProduct(t, repo, 5)

	got, err := repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	got.Stock = 1000

	again, err := repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Stock)
}

func TestReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newProduct(t, repo, 5)

	left, err := repo.Reserve(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	_, err = repo.Reserve(ctx, p.ID, 3)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	left, err = repo.Release(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, left)

	_, err = repo.Reserve(ctx, 9999, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = repo.Release(ctx, p.ID, 0)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newProduct(t, repo, 50)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Reserve(ctx, p.ID, 1)
			if err == nil {
				succeeded.Add(1)
				return
			}
			if !errors.Is(err, apperr.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), succeeded.Load())
	assert.Equal(t, 0, got.Stock)
}

func TestUpdatePrice(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newProduct(t, repo, 5)

	updated, err := repo.UpdatePrice(ctx, p.ID, decimal.RequireFromString("7.49"))
	require.NoError(t, err)
	assert.Equal(t, "7.49", updated.Price.String())

	_, err = repo.UpdatePrice(ctx, p.ID, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()

	n, err := SeedCatalog(ctx, repo)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n)
	assert.Equal(t, "Red Guppy Male - Premium", list[0].Name)
	assert.Equal(t, 25, list[0].Stock)
	assert.Equal(t, "https://aquaworld.com/images/red-guppy.jpg", list[0].ImageURL)
}
