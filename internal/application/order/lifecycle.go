package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/petstore-core/internal/application"
	"github.com/Zhima-Mochi/petstore-core/internal/application/inventory"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/petstore-core/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	orderService = "order-service"

	useCaseOrderCreate  = "order.create"
	useCaseOrderUpdate  = "order.update_status"
	useCaseOrderCancel  = "order.cancel"
	useCaseOrderGet     = "order.get"
	useCaseOrderByNum   = "order.get_by_number"
	useCaseOrderForUser = "order.list_for_user"

	// status writes retry when a concurrent writer won the compare-and-set
	maxStatusAttempts = 3
)

var (
	ErrConflict   = domain.ErrConflict
	ErrNotFound   = domain.ErrNotFound
	ErrRepository = errors.New("order: repository failure")
)

type ItemInput struct {
	ProductID int64
	Quantity  int
}

type CreateOrderInput struct {
	UserID int64
	Items  []ItemInput
}

// Lifecycle owns order creation, status transitions and cancellation.
type Lifecycle struct {
	repo      domain.Repository
	products  ProductReader
	ledger    StockLedger
	orderIDs  IDGenerator
	itemIDs   IDGenerator
	numbers   OrderNumberGenerator
	publisher domoutbox.Publisher
	inst      *application.Instrumentation
	now       func() time.Time
}

type Deps struct {
	Repo      domain.Repository
	Products  ProductReader
	Ledger    StockLedger
	OrderIDs  IDGenerator
	ItemIDs   IDGenerator
	Numbers   OrderNumberGenerator
	Publisher domoutbox.Publisher
	Clock     func() time.Time
}

func NewLifecycle(deps Deps, tel observability.Observability) *Lifecycle {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = domoutbox.NopPublisher()
	}
	return &Lifecycle{
		repo:      deps.Repo,
		products:  deps.Products,
		ledger:    deps.Ledger,
		orderIDs:  deps.OrderIDs,
		itemIDs:   deps.ItemIDs,
		numbers:   deps.Numbers,
		publisher: publisher,
		inst:      application.NewInstrumentation(tel, orderService),
		now:       now,
	}
}

// CreateOrder validates and prices every item, reserves stock for all of
// them and stores the order as PENDING. Nothing is reserved when any check fails.
func (l *Lifecycle) CreateOrder(ctx context.Context, cmd CreateOrderInput) (_ *domain.Order, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseOrderCreate, "CreateOrder",
		attribute.Int64("order.user_id", cmd.UserID),
		attribute.Int("order.items", len(cmd.Items)),
	)
	defer func() { call.End(err) }()
	call.With(observability.F("user_id", cmd.UserID))

	if cmd.UserID <= 0 {
		return nil, domain.ErrUserRequired
	}
	if len(cmd.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d", domain.ErrInvalidQuantity, item.ProductID)
		}
	}
	if err := ctx.Err(); err != nil {
		call.Status("CONTEXT_CANCELED")
		return nil, err
	}

	lines, prices, err := l.price(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}

	if err := l.ledger.ReserveAll(ctx, lines); err != nil {
		call.Status("RESERVATION_FAILED")
		return nil, fmt.Errorf("order: reserve stock: %w", err)
	}

	items := make([]domain.LineItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.LineItem{
			ID:        l.itemIDs.Next(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: prices[item.ProductID],
		}
	}

	entity, err := domain.New(l.orderIDs.Next(), cmd.UserID, l.numbers.Next(), items, l.now())
	if err != nil {
		err = fmt.Errorf("order: construct: %w", err)
	} else if ierr := l.repo.Insert(ctx, entity); ierr != nil {
		err = wrapRepositoryError(ierr)
	}
	if err != nil {
		if rerr := l.ledger.ReleaseAll(context.WithoutCancel(ctx), lines); rerr != nil {
			call.Status("RELEASE_AFTER_FAILURE_FAILED")
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}

	call.SetAttributes(
		attribute.Int64("order.id", entity.ID),
		attribute.String("order.number", entity.OrderNumber),
		attribute.String("order.total", entity.TotalPrice.String()),
	)
	call.Event("order.created", attribute.Int64("order.id", entity.ID))
	call.With(observability.F("order_id", entity.ID), observability.F("order_number", entity.OrderNumber))
	l.publish(ctx, call, domain.NewOrderCreatedEvent(entity))

	return entity, nil
}

// price looks up every product once, checks the summed quantity against
// current stock and snapshots the unit price.
func (l *Lifecycle) price(ctx context.Context, items []ItemInput) ([]inventory.Line, map[int64]decimal.Decimal, error) {
	lines := make([]inventory.Line, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	prices := make(map[int64]decimal.Decimal, len(lines))
	for _, line := range lines {
		p, err := l.products.Get(ctx, line.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("order: product %d: %w", line.ProductID, err)
		}
		if p.Stock < line.Quantity {
			return nil, nil, fmt.Errorf("%w: product %d has %d, requested %d",
				catalog.ErrInsufficientStock, p.ID, p.Stock, line.Quantity)
		}
		prices[p.ID] = p.Price
	}
	return lines, prices, nil
}

// UpdateStatus applies an administrative transition. Moving to CANCELLED
// returns the order's stock exactly like Cancel does.
func (l *Lifecycle) UpdateStatus(ctx context.Context, orderID int64, status string) (_ *domain.Order, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseOrderUpdate, "UpdateStatus",
		attribute.Int64("order.id", orderID),
		attribute.String("order.next_status", status),
	)
	defer func() { call.End(err) }()
	call.With(observability.F("order_id", orderID), observability.F("next_status", status))

	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, status)
	}

	return l.transition(ctx, call, orderID, func(o *domain.Order) error {
		return o.TransitionTo(next)
	})
}

// Cancel cancels a PENDING or CONFIRMED order and releases its stock once,
// even when several cancellations race.
func (l *Lifecycle) Cancel(ctx context.Context, orderID int64) (_ *domain.Order, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseOrderCancel, "CancelOrder", attribute.Int64("order.id", orderID))
	defer func() { call.End(err) }()
	call.With(observability.F("order_id", orderID))

	return l.transition(ctx, call, orderID, (*domain.Order).Cancel)
}

func (l *Lifecycle) transition(ctx context.Context, call *application.Call, orderID int64, apply func(*domain.Order) error) (*domain.Order, error) {
	for attempt := 1; ; attempt++ {
		entity, err := l.repo.Get(ctx, orderID)
		if err != nil {
			return nil, wrapRepositoryError(err)
		}
		from := entity.Status
		original := entity.Clone()
		if err := apply(entity); err != nil {
			return nil, err
		}

		err = l.repo.CompareAndSetStatus(ctx, entity, from)
		if errors.Is(err, domain.ErrConflict) && attempt < maxStatusAttempts {
			call.Event("order.status_retry", attribute.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, wrapRepositoryError(err)
		}

		call.With(observability.F("from_status", string(from)), observability.F("to_status", string(entity.Status)))
		call.Event("order.status_changed",
			attribute.String("order.from", string(from)),
			attribute.String("order.to", string(entity.Status)),
		)

		if entity.Status == domain.StatusCancelled {
			if err := l.releaseCancelled(ctx, call, entity, original); err != nil {
				return nil, err
			}
			l.publish(ctx, call, domain.NewOrderCancelledEvent(entity, from))
		}
		l.publish(ctx, call, domain.NewOrderStatusChangedEvent(entity, from))
		return entity, nil
	}
}

func (l *Lifecycle) Get(ctx context.Context, orderID int64) (_ *domain.Order, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseOrderGet, "GetOrder", attribute.Int64("order.id", orderID))
	defer func() { call.End(err) }()

	entity, err := l.repo.Get(ctx, orderID)
	return entity, wrapRepositoryError(err)
}

func (l *Lifecycle) GetByNumber(ctx context.Context, orderNumber string) (_ *domain.Order, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseOrderByNum, "GetOrderByNumber", attribute.String("order.number", orderNumber))
	defer func() { call.End(err) }()

	entity, err := l.repo.GetByNumber(ctx, orderNumber)
	return entity, wrapRepositoryError(err)
}

// ListForUser returns the user's orders oldest first; no orders is an empty slice.
func (l *Lifecycle) ListForUser(ctx context.Context, userID int64) (_ []*domain.Order, err error) {
	ctx, call := l.inst.Begin(ctx, useCaseOrderForUser, "ListOrdersForUser", attribute.Int64("order.user_id", userID))
	defer func() { call.End(err) }()

	orders, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	call.With(observability.F("orders", len(orders)))
	return orders, nil
}

func (l *Lifecycle) publish(ctx context.Context, call *application.Call, event domoutbox.Event) {
	if err := l.inst.Publish(ctx, l.publisher, event); err != nil {
		call.Logger().Warn("event_publish_failed",
			observability.F("event", event.EventName()),
			observability.F("error", err),
		)
	}
}

// releaseCancelled returns the stock of an order that was just marked
// CANCELLED. When a line cannot be released, the lines already returned are
// reserved again and the order is put back to its previous state, so the
// cancel can be retried.
func (l *Lifecycle) releaseCancelled(ctx context.Context, call *application.Call, cancelled, original *domain.Order) error {
	lines := linesOf(cancelled)
	released := make([]inventory.Line, 0, len(lines))
	for _, line := range lines {
		err := l.ledger.ReleaseAll(ctx, []inventory.Line{line})
		if err == nil {
			released = append(released, line)
			continue
		}

		call.Status("RELEASE_FAILED")
		releaseErr := fmt.Errorf("order: release stock for %d: %w", cancelled.ID, err)
		revertCtx := context.WithoutCancel(ctx)
		if len(released) > 0 {
			if rerr := l.ledger.ReserveAll(revertCtx, released); rerr != nil {
				call.Status("REVERT_FAILED")
				return errors.Join(releaseErr, fmt.Errorf("order: re-reserve stock for %d: %w", cancelled.ID, rerr))
			}
		}
		if cerr := l.repo.CompareAndSetStatus(revertCtx, original, domain.StatusCancelled); cerr != nil {
			call.Status("REVERT_FAILED")
			return errors.Join(releaseErr, wrapRepositoryError(cerr))
		}
		return releaseErr
	}
	return nil
}

func linesOf(o *domain.Order) []inventory.Line {
	lines := make([]inventory.Line, len(o.Items))
	for i, item := range o.Items {
		lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
