package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/petstore-core/internal/application"
	domain "github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	inventoryService  = "inventory-service"
	useCaseReserve    = "inventory.reserve"
	useCaseRelease    = "inventory.release"
	useCaseReserveAll = "inventory.reserve_all"
	useCaseReleaseAll = "inventory.release_all"
)

// Line is a quantity of one product to reserve or release.
type Line struct {
	ProductID int64
	Quantity  int
}

// Ledger is the only writer of product stock.
type Ledger struct {
	repo      domain.Repository
	publisher domoutbox.Publisher
	inst      *application.Instrumentation
}

func NewLedger(repo domain.Repository, publisher domoutbox.Publisher, tel observability.Observability) *Ledger {
	return &Ledger{
		repo:      repo,
		publisher: publisher,
		inst:      application.NewInstrumentation(tel, inventoryService),
	}
}

// Reserve takes quantity units of a product and returns the remaining stock.
func (l *Ledger) Reserve(ctx context.Context, productID int64, quantity int) (_ int, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseReserve, "Reserve",
		attribute.Int64("product.id", productID),
		attribute.Int("stock.quantity", quantity),
	)
	defer func() { call.End(err) }()
	call.With(observability.F("product_id", productID), observability.F("quantity", quantity))

	return l.reserve(ctx, call, productID, quantity)
}

// Release returns quantity units of a product and returns the new stock.
func (l *Ledger) Release(ctx context.Context, productID int64, quantity int) (_ int, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseRelease, "Release",
		attribute.Int64("product.id", productID),
		attribute.Int("stock.quantity", quantity),
	)
	defer func() { call.End(err) }()
	call.With(observability.F("product_id", productID), observability.F("quantity", quantity))

	return l.release(ctx, call, productID, quantity)
}

// ReserveAll reserves every line in order. When a line fails, the lines
// already reserved are released again before the error is returned.
func (l *Ledger) ReserveAll(ctx context.Context, lines []Line) (err error) {
	ctx, call := l.inst.Begin(ctx, useCaseReserveAll, "ReserveAll", attribute.Int("stock.lines", len(lines)))
	defer func() { call.End(err) }()

	for i, line := range lines {
		if _, err = l.reserve(ctx, call, line.ProductID, line.Quantity); err == nil {
			continue
		}
		if cerr := l.compensate(ctx, call, lines[:i]); cerr != nil {
			call.Status("COMPENSATION_FAILED")
			return errors.Join(err, cerr)
		}
		return err
	}
	return nil
}

// ReleaseAll attempts every line and reports the first failure.
func (l *Ledger) ReleaseAll(ctx context.Context, lines []Line) (err error) {
	ctx, call := l.inst.Begin(ctx, useCaseReleaseAll, "ReleaseAll", attribute.Int("stock.lines", len(lines)))
	defer func() { call.End(err) }()

	for _, line := range lines {
		if _, rerr := l.release(ctx, call, line.ProductID, line.Quantity); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

func (l *Ledger) compensate(ctx context.Context, call *application.Call, reserved []Line) error {
	var errs []error
	for _, line := range reserved {
		if _, err := l.release(ctx, call, line.ProductID, line.Quantity); err != nil {
			errs = append(errs, err)
		}
	}
	if len(reserved) > 0 {
		call.Event("inventory.compensated", attribute.Int("stock.lines", len(reserved)))
	}
	return errors.Join(errs...)
}

func (l *Ledger) reserve(ctx context.Context, call *application.Call, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	remaining, err := l.repo.Reserve(ctx, productID, quantity)
	if err != nil {
		return 0, fmt.Errorf("inventory: reserve product %d: %w", productID, err)
	}
	call.Event("inventory.reserved",
		attribute.Int64("product.id", productID),
		attribute.Int("stock.remaining", remaining),
	)
	l.publish(ctx, call, domain.NewStockReservedEvent(productID, quantity, remaining))
	return remaining, nil
}

func (l *Ledger) release(ctx context.Context, call *application.Call, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	stock, err := l.repo.Release(ctx, productID, quantity)
	if err != nil {
		return 0, fmt.Errorf("inventory: release product %d: %w", productID, err)
	}
	call.Event("inventory.released",
		attribute.Int64("product.id", productID),
		attribute.Int("stock.remaining", stock),
	)
	l.publish(ctx, call, domain.NewStockReleasedEvent(productID, quantity, stock))
	return stock, nil
}

func (l *Ledger) publish(ctx context.Context, call *application.Call, event domoutbox.Event) {
	if err := l.inst.Publish(ctx, l.publisher, event); err != nil {
		call.Logger().Warn("event_publish_failed",
			observability.F("event", event.EventName()),
			observability.F("error", err),
		)
	}
}
