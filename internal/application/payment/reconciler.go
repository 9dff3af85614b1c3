package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/petstore-core/internal/application"
	domorder "github.com/Zhima-Mochi/petstore-core/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/petstore-core/internal/domain/payment"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService = "payment-service"

	useCasePaymentProcess  = "payment.process"
	useCasePaymentRefund   = "payment.refund"
	useCasePaymentGet      = "payment.get"
	useCasePaymentForOrder = "payment.get_for_order"

	gatewayPeer = "payment-gateway"
)

var (
	ErrGateway    = errors.New("payment: gateway failure")
	ErrRepository = errors.New("payment: repository failure")
)

type ProcessPaymentInput struct {
	OrderID int64
	Amount  decimal.Decimal
	Method  string
}

// Reconciler records at most one payment per order and checks it against the order total.
type Reconciler struct {
	orders         OrderReader
	repo           dompay.Repository
	gateway        dompay.Gateway
	ids            IDGenerator
	transactionIDs func() string
	publisher      domoutbox.Publisher
	inst           *application.Instrumentation
}

type Deps struct {
	Orders         OrderReader
	Repo           dompay.Repository
	Gateway        dompay.Gateway
	IDs            IDGenerator
	TransactionIDs func() string
	Publisher      domoutbox.Publisher
}

func NewReconciler(deps Deps, tel observability.Observability) *Reconciler {
	gateway := deps.Gateway
	if gateway == nil {
		gateway = InstantGateway{}
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = domoutbox.NopPublisher()
	}
	return &Reconciler{
		orders:         deps.Orders,
		repo:           deps.Repo,
		gateway:        gateway,
		ids:            deps.IDs,
		transactionIDs: deps.TransactionIDs,
		publisher:      publisher,
		inst:           application.NewInstrumentation(tel, paymentService),
	}
}

// Process charges an order once. A declined charge is stored as FAILED and
// returned without error; the order status is left alone.
func (r *Reconciler) Process(ctx context.Context, cmd ProcessPaymentInput) (_ *dompay.Payment, err error) {
	ctx, call := r.inst.Begin(ctx, useCasePaymentProcess, "ProcessPayment",
		attribute.Int64("order.id", cmd.OrderID),
		attribute.String("payment.amount_requested", cmd.Amount.String()),
		attribute.String("payment.method", cmd.Method),
	)
	defer func() { call.End(err) }()
	call.With(observability.F("order_id", cmd.OrderID), observability.F("amount", cmd.Amount.String()))

	order, err := r.orders.Get(ctx, cmd.OrderID)
	if err != nil {
		if errors.Is(err, domorder.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order lookup: %w", ErrRepository, err)
	}

	if existing, lookupErr := r.repo.GetByOrder(ctx, order.ID); lookupErr == nil {
		return nil, fmt.Errorf("%w: order %d has payment %d", dompay.ErrAlreadyExists, order.ID, existing.ID)
	} else if !errors.Is(lookupErr, dompay.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrRepository, lookupErr)
	}

	if !cmd.Amount.Equal(order.TotalPrice) {
		return nil, fmt.Errorf("%w: got %s, order total %s", dompay.ErrAmountMismatch, cmd.Amount, order.TotalPrice)
	}

	p, err := dompay.New(r.ids.Next(), order.ID, cmd.Amount, cmd.Method, r.transactionIDs())
	if err != nil {
		return nil, err
	}
	if err := r.repo.Insert(ctx, p); err != nil {
		return nil, wrapRepositoryError(err)
	}
	call.SetAttributes(
		attribute.Int64("payment.id", p.ID),
		attribute.String("payment.transaction_id", p.TransactionID),
	)

	start := time.Now()
	approved, reason, gwErr := r.gateway.Charge(ctx, p)
	r.inst.External(gatewayPeer, "charge", start, gwErr)

	switch {
	case gwErr != nil:
		err = p.MarkFailed(gwErr.Error())
	case approved:
		err = p.MarkSucceeded()
	default:
		err = p.MarkFailed(reason)
	}
	if err != nil {
		return nil, err
	}
	if err := r.repo.Update(context.WithoutCancel(ctx), p); err != nil {
		return nil, wrapRepositoryError(err)
	}

	call.SetAttributes(attribute.String("payment.status", string(p.Status)))
	call.With(observability.F("payment_id", p.ID), observability.F("payment_status", string(p.Status)))
	r.publish(ctx, call, dompay.NewPaymentProcessedEvent(p))

	if gwErr != nil {
		call.Status("GATEWAY_FAILED")
		return p, fmt.Errorf("%w: %w", ErrGateway, gwErr)
	}
	if p.Status == dompay.StatusFailed {
		call.Status("DECLINED")
	}
	return p, nil
}

// Refund reverses a SUCCESS payment. Stock and order status are not touched.
// The payment is moved to REFUNDED before the gateway is called, so only one
// of several concurrent refunds reaches the gateway. A gateway error puts the
// payment back to SUCCESS.
func (r *Reconciler) Refund(ctx context.Context, paymentID int64) (_ *dompay.Payment, err error) {
	ctx, call := r.inst.Begin(ctx, useCasePaymentRefund, "RefundPayment", attribute.Int64("payment.id", paymentID))
	defer func() { call.End(err) }()
	call.With(observability.F("payment_id", paymentID))

	original, err := r.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}

	p := original.Clone()
	if err := p.Refund(); err != nil {
		return nil, err
	}
	if err := r.repo.CompareAndSetStatus(ctx, p, dompay.StatusSuccess); err != nil {
		if errors.Is(err, dompay.ErrStatusChanged) {
			call.Status("REFUND_RACE_LOST")
			return nil, fmt.Errorf("%w: %v", dompay.ErrNotRefundable, err)
		}
		return nil, wrapRepositoryError(err)
	}

	start := time.Now()
	gwErr := r.gateway.Refund(ctx, p, p.Amount)
	r.inst.External(gatewayPeer, "refund", start, gwErr)
	if gwErr != nil {
		call.Status("GATEWAY_FAILED")
		if rerr := r.repo.CompareAndSetStatus(context.WithoutCancel(ctx), original, dompay.StatusRefunded); rerr != nil {
			return nil, errors.Join(fmt.Errorf("%w: %w", ErrGateway, gwErr), wrapRepositoryError(rerr))
		}
		return nil, fmt.Errorf("%w: %w", ErrGateway, gwErr)
	}

	r.publish(ctx, call, dompay.NewPaymentRefundedEvent(p))
	return p, nil
}

func (r *Reconciler) Get(ctx context.Context, paymentID int64) (_ *dompay.Payment, err error) {
	ctx, call := r.inst.Begin(ctx, useCasePaymentGet, "GetPayment", attribute.Int64("payment.id", paymentID))
	defer func() { call.End(err) }()

	p, err := r.repo.Get(ctx, paymentID)
	return p, wrapRepositoryError(err)
}

func (r *Reconciler) GetForOrder(ctx context.Context, orderID int64) (_ *dompay.Payment, err error) {
	ctx, call := r.inst.Begin(ctx, useCasePaymentForOrder, "GetPaymentForOrder", attribute.Int64("order.id", orderID))
	defer func() { call.End(err) }()

	p, err := r.repo.GetByOrder(ctx, orderID)
	return p, wrapRepositoryError(err)
}

func (r *Reconciler) publish(ctx context.Context, call *application.Call, event domoutbox.Event) {
	if err := r.inst.Publish(ctx, r.publisher, event); err != nil {
		call.Logger().Warn("event_publish_failed",
			observability.F("event", event.EventName()),
			observability.F("error", err),
		)
	}
}

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, dompay.ErrNotFound), errors.Is(err, dompay.ErrAlreadyExists):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
