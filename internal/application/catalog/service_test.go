package catalog

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	repo := memory.NewProductRepository()
	_, err := memory.SeedCatalog(context.Background(), repo)
	require.NoError(t, err)
	return NewService(repo, observability.Nop())
}

func TestSearchByNameIsCaseInsensitive(t *testing.T) {
	svc := seeded(t)

	got, err := svc.SearchByName(context.Background(), "GUPPY")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.Contains(t, p.Name, "Guppy")
	}

	none, err := svc.SearchByName(context.Background(), "shark")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListByCategory(t *testing.T) {
	svc := seeded(t)

	got, err := svc.ListByCategory(context.Background(), "Fish_Food")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListInStock(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	svc := NewService(repo, nil)

	empty, err := svc.AddProduct(ctx, AddProductInput{Name: "Sold Out Snail", Category: "decorations", Price: decimal.NewFromInt(2)})
	require.NoError(t, err)
	stocked, err := svc.AddProduct(ctx, AddProductInput{Name: "Java Moss", Category: "DECORATIONS", Price: decimal.NewFromInt(3), Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, "decorations", stocked.Category)

	got, err := svc.ListInStock(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stocked.ID, got[0].ID)
	assert.NotEqual(t, empty.ID, got[0].ID)
}

func TestGetProductNotFound(t *testing.T) {
	svc := seeded(t)
	_, err := svc.GetProduct(context.Background(), 42)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddProductValidates(t *testing.T) {
	svc := NewService(memory.NewProductRepository(), nil)
	_, err := svc.AddProduct(context.Background(), AddProductInput{Name: "", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.AddProduct(context.Background(), AddProductInput{Name: "Free Fish", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdatePrice(t *testing.T) {
	svc := seeded(t)
	p, err := svc.UpdatePrice(context.Background(), 2001, decimal.RequireFromString("7.25"))
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("7.25")))
}
