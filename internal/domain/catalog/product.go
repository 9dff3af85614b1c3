package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = fmt.Errorf("catalog: product %w", apperr.ErrNotFound)
	ErrInvalidQuantity   = fmt.Errorf("catalog: quantity must be greater than zero: %w", apperr.ErrInvalidInput)
	ErrInvalidPrice      = fmt.Errorf("catalog: price must be zero or greater: %w", apperr.ErrInvalidInput)
	ErrInvalidStock      = fmt.Errorf("catalog: stock must be zero or greater: %w", apperr.ErrInvalidInput)
	ErrNameRequired      = fmt.Errorf("catalog: name is required: %w", apperr.ErrInvalidInput)
	ErrInsufficientStock = fmt.Errorf("catalog: %w", apperr.ErrInsufficientStock)
)

const (
	CategoryGuppies     = "guppies"
	CategoryFishFood    = "fish_food"
	CategoryEquipment   = "equipment"
	CategoryDecorations = "decorations"
	CategoryMedicines   = "medicines"
)

type Product struct {
	ID          int64
	Name        string
	Category    string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New validates the catalog fields of a product. The ID is assigned by the repository.
func New(name, category, description string, price decimal.Decimal, stock int) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	now := time.Now().UTC()
	return &Product{
		Name:        name,
		Category:    category,
		Description: description,
		Price:       price,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Deduct removes quantity units from stock, refusing to go below zero.
func (p *Product) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return fmt.Errorf("%w: product %d has %d, requested %d", ErrInsufficientStock, p.ID, p.Stock, quantity)
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// Restock adds quantity units back. No upper bound is enforced.
func (p *Product) Restock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	p.touch()
	return nil
}

func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	p.Price = price
	p.touch()
	return nil
}

func (p *Product) InStock() bool { return p.Stock > 0 }

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
