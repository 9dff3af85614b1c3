package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/petstore-core/internal/application"
	domain "github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogService = "catalog-service"

	useCaseAdd         = "catalog.add"
	useCaseGet         = "catalog.get"
	useCaseList        = "catalog.list"
	useCaseSearch      = "catalog.search"
	useCaseCategory    = "catalog.by_category"
	useCaseInStock     = "catalog.in_stock"
	useCaseUpdatePrice = "catalog.update_price"
)

// Service exposes the read side of the catalog plus catalog maintenance.
// Stock is not writable here; it changes only through the inventory ledger.
type Service struct {
	repo domain.Repository
	inst *application.Instrumentation
}

func NewService(repo domain.Repository, tel observability.Observability) *Service {
	return &Service{
		repo: repo,
		inst: application.NewInstrumentation(tel, catalogService),
	}
}

type AddProductInput struct {
	Name        string
	Category    string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	Stock       int
}

func (s *Service) AddProduct(ctx context.Context, in AddProductInput) (_ *domain.Product, err error) {
	ctx, call := s.inst.Begin(ctx, useCaseAdd, "AddProduct", attribute.String("product.category", in.Category))
	defer func() { call.End(err) }()

	p, err := domain.New(in.Name, strings.ToLower(in.Category), in.Description, in.Price, in.Stock)
	if err != nil {
		return nil, err
	}
	p.ImageURL = in.ImageURL
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: insert: %w", err)
	}
	call.SetAttributes(attribute.Int64("product.id", p.ID))
	return p.Clone(), nil
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (_ *domain.Product, err error) {
	ctx, call := s.inst.Begin(ctx, useCaseGet, "GetProduct", attribute.Int64("product.id", productID))
	defer func() { call.End(err) }()

	return s.repo.Get(ctx, productID)
}

func (s *Service) ListProducts(ctx context.Context) (_ []*domain.Product, err error) {
	ctx, call := s.inst.Begin(ctx, useCaseList, "ListProducts")
	defer func() { call.End(err) }()

	return s.repo.List(ctx)
}

// SearchByName matches a case-insensitive substring of the product name.
func (s *Service) SearchByName(ctx context.Context, name string) (_ []*domain.Product, err error) {
	ctx, call := s.inst.Begin(ctx, useCaseSearch, "SearchByName")
	defer func() { call.End(err) }()

	needle := strings.ToLower(strings.TrimSpace(name))
	return s.filter(ctx, func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
}

func (s *Service) ListByCategory(ctx context.Context, category string) (_ []*domain.Product, err error) {
	ctx, call := s.inst.Begin(ctx, useCaseCategory, "ListByCategory", attribute.String("product.category", category))
	defer func() { call.End(err) }()

	want := strings.TrimSpace(category)
	return s.filter(ctx, func(p *domain.Product) bool {
		return strings.EqualFold(p.Category, want)
	})
}

func (s *Service) ListInStock(ctx context.Context) (_ []*domain.Product, err error) {
	ctx, call := s.inst.Begin(ctx, useCaseInStock, "ListInStock")
	defer func() { call.End(err) }()

	return s.filter(ctx, (*domain.Product).InStock)
}

// UpdatePrice changes the catalog price. Existing orders keep their snapshot.
func (s *Service) UpdatePrice(ctx context.Context, productID int64, price decimal.Decimal) (_ *domain.Product, err error) {
	ctx, call := s.inst.Begin(ctx, useCaseUpdatePrice, "UpdatePrice",
		attribute.Int64("product.id", productID),
		attribute.String("product.price", price.String()),
	)
	defer func() { call.End(err) }()

	return s.repo.UpdatePrice(ctx, productID, price)
}

func (s *Service) filter(ctx context.Context, keep func(*domain.Product) bool) ([]*domain.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	out := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
