package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/id"
	"github.com/shopspring/decimal"
)

// ProductRepository keeps products in a map guarded by one RWMutex. Stock
// check-and-adjust runs under the write lock, so it is atomic per product.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	ids      *id.Sequence
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]*domain.Product),
		ids:      id.NewSequence(id.ProductOffset),
	}
}

// Insert stores product and assigns its ID when unset.
func (r *ProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	_ = ctx
	if product == nil {
		return fmt.Errorf("product repository: product is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.ids.Next()
	}
	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("product repository: duplicate id %d", product.ID)
	}

	r.products[product.ID] = product.Clone()
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, productID int64) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return product.Clone(), nil
}

// List returns every product ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, productID int64, price decimal.Decimal) (*domain.Product, error) {
	return r.mutate(ctx, productID, func(p *domain.Product) error { return p.SetPrice(price) })
}

func (r *ProductRepository) Reserve(ctx context.Context, productID int64, quantity int) (int, error) {
	p, err := r.mutate(ctx, productID, func(p *domain.Product) error { return p.Deduct(quantity) })
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

func (r *ProductRepository) Release(ctx context.Context, productID int64, quantity int) (int, error) {
	p, err := r.mutate(ctx, productID, func(p *domain.Product) error { return p.Restock(quantity) })
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// mutate applies fn to a copy and stores it only when fn succeeds.
func (r *ProductRepository) mutate(ctx context.Context, productID int64, fn func(*domain.Product) error) (*domain.Product, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.products[productID] = next
	return next.Clone(), nil
}
