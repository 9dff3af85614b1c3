package httppresentation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	appCatalog "github.com/Zhima-Mochi/petstore-core/internal/application/catalog"
	appOrder "github.com/Zhima-Mochi/petstore-core/internal/application/order"
	appPayment "github.com/Zhima-Mochi/petstore-core/internal/application/payment"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/idempotency"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/observability/logctx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

const (
	componentHTTPHandler = "http_server"
	tracerName           = "petstore.http"
	apiPrefix            = "/api/v1"

	headerUserID         = "X-User-ID"
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	defaultIdempotencyTTL = 24 * time.Hour
	requestTimeout        = 15 * time.Second
)

var errBadRequest = fmt.Errorf("http: %w", apperr.ErrInvalidInput)

type Handler struct {
	catalog        *appCatalog.Service
	orders         *appOrder.Lifecycle
	payments       *appPayment.Reconciler
	idempotency    idempotency.Store
	idempotencyTTL time.Duration
	log            observability.Logger
	reqCounter     observability.Counter   // http_requests_total{method,route,status}
	durHistogram   observability.Histogram // http_request_duration_seconds{method,route,status}
}

type Deps struct {
	Catalog        *appCatalog.Service
	Orders         *appOrder.Lifecycle
	Payments       *appPayment.Reconciler
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
}

func NewHandler(deps Deps, logger observability.Logger, tel observability.Observability) *Handler {
	tel = observability.OrNop(tel)
	if logger == nil {
		logger = tel.Logger()
	}
	store := deps.Idempotency
	if store == nil {
		store = idempotency.NewMemoryStore(nil)
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &Handler{
		catalog:        deps.Catalog,
		orders:         deps.Orders,
		payments:       deps.Payments,
		idempotency:    store,
		idempotencyTTL: ttl,
		log:            logger.With(observability.F("component", componentHTTPHandler)),
		reqCounter:     tel.Metrics().Counter(observability.MHTTPRequests),
		durHistogram:   tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
}

// Router wires every route through Trace → request logger → access log → metrics → handler.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	h.handle(r, http.MethodGet, "/health", h.handleHealth)

	h.handle(r, http.MethodGet, apiPrefix+"/products", h.handleListProducts)
	h.handle(r, http.MethodGet, apiPrefix+"/products/search", h.handleSearchProducts)
	h.handle(r, http.MethodGet, apiPrefix+"/products/in-stock", h.handleInStockProducts)
	h.handle(r, http.MethodGet, apiPrefix+"/products/category/{category}", h.handleProductsByCategory)
	h.handle(r, http.MethodGet, apiPrefix+"/products/{id}", h.handleGetProduct)

	h.handle(r, http.MethodPost, apiPrefix+"/orders", h.handleCreateOrder)
	h.handle(r, http.MethodGet, apiPrefix+"/orders", h.handleListOrders)
	h.handle(r, http.MethodGet, apiPrefix+"/orders/number/{number}", h.handleGetOrderByNumber)
	h.handle(r, http.MethodGet, apiPrefix+"/orders/{id}", h.handleGetOrder)
	h.handle(r, http.MethodPatch, apiPrefix+"/orders/{id}/status", h.handleUpdateOrderStatus)
	h.handle(r, http.MethodPost, apiPrefix+"/orders/{id}/cancel", h.handleCancelOrder)

	h.handle(r, http.MethodPost, apiPrefix+"/payments", h.handleProcessPayment)
	h.handle(r, http.MethodGet, apiPrefix+"/payments/order/{orderId}", h.handleGetPaymentForOrder)
	h.handle(r, http.MethodGet, apiPrefix+"/payments/{id}", h.handleGetPayment)
	h.handle(r, http.MethodPost, apiPrefix+"/payments/{id}/refund", h.handleRefundPayment)

	return r
}

// handle mounts fn behind the per-route middleware chain; the pattern doubles
// as the low-cardinality route label.
func (h *Handler) handle(r chi.Router, method, route string, fn http.HandlerFunc) {
	wrapped := h.withTrace(route,
		ObservabilityMiddleware(h.log)(
			h.withAccessLog(route,
				h.withHTTPMetrics(route, fn),
			),
		),
	)
	r.Method(method, route, wrapped)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, "ok", map[string]string{"status": "UP"})
}

// --- catalog

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "products retrieved", toProductResponses(products))
}

func (h *Handler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		h.writeDomainError(w, r, fmt.Errorf("%w: name query parameter is required", errBadRequest))
		return
	}
	products, err := h.catalog.SearchByName(r.Context(), name)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "products retrieved", toProductResponses(products))
}

func (h *Handler) handleInStockProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListInStock(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "products retrieved", toProductResponses(products))
}

func (h *Handler) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "products retrieved", toProductResponses(products))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "product retrieved", toProductResponse(p))
}

// --- orders

type orderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := userIDFrom(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
	if key != "" {
		key = idempotency.OrderCreateKey(userID, key)
		claimed, done := h.replayOrder(ctx, w, r, key)
		if done {
			return
		}
		if !claimed {
			key = ""
		}
	}

	cmd := appOrder.CreateOrderInput{UserID: userID, Items: make([]appOrder.ItemInput, len(req.Items))}
	for i, item := range req.Items {
		cmd.Items[i] = appOrder.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := h.orders.CreateOrder(ctx, cmd)
	if err != nil {
		if key != "" {
			h.releaseKey(ctx, key)
		}
		h.writeDomainError(w, r, err)
		return
	}
	if key != "" {
		if err := h.idempotency.Complete(context.WithoutCancel(ctx), key, strconv.FormatInt(o.ID, 10), h.idempotencyTTL); err != nil {
			logctx.FromOr(ctx, h.log).Warn("idempotency_complete_failed", observability.F("error", err))
		}
	}
	writeSuccess(w, r, http.StatusCreated, "order created", toOrderResponse(o))
}

// replayOrder claims key. It reports claimed=true when this request owns the
// key, or done=true when a response was already written.
func (h *Handler) replayOrder(ctx context.Context, w http.ResponseWriter, r *http.Request, key string) (claimed, done bool) {
	ok, value, err := h.idempotency.Claim(ctx, key, h.idempotencyTTL)
	if err != nil {
		logctx.FromOr(ctx, h.log).Warn("idempotency_claim_failed", observability.F("error", err))
		return false, false
	}
	if ok {
		return true, false
	}
	if value == idempotency.Pending {
		writeError(w, r, http.StatusConflict, string(apperr.KindConflict), "a request with this Idempotency-Key is still in progress")
		return false, true
	}

	orderID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logctx.FromOr(ctx, h.log).Warn("idempotency_value_invalid", observability.F("value", value))
		return false, false
	}
	o, err := h.orders.Get(ctx, orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return false, true
	}
	w.Header().Set(headerReplayed, "true")
	writeSuccess(w, r, http.StatusOK, "order already created", toOrderResponse(o))
	return false, true
}

func (h *Handler) releaseKey(ctx context.Context, key string) {
	if err := h.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
		logctx.FromOr(ctx, h.log).Warn("idempotency_release_failed", observability.F("error", err))
	}
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	orders, err := h.orders.ListForUser(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	writeSuccess(w, r, http.StatusOK, "orders retrieved", out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "order retrieved", toOrderResponse(o))
}

func (h *Handler) handleGetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "order retrieved", toOrderResponse(o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "order status updated", toOrderResponse(o))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	o, err := h.orders.Cancel(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "order cancelled", toOrderResponse(o))
}

// --- payments

type processPaymentRequest struct {
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.payments.Process(r.Context(), appPayment.ProcessPaymentInput{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Method:  req.PaymentMethod,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, "payment processed", toPaymentResponse(p))
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.payments.Get(r.Context(), paymentID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "payment retrieved", toPaymentResponse(p))
}

func (h *Handler) handleGetPaymentForOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.payments.GetForOrder(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "payment retrieved", toPaymentResponse(p))
}

func (h *Handler) handleRefundPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.payments.Refund(r.Context(), paymentID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "payment refunded", toPaymentResponse(p))
}

// --- request helpers

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed body: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return v, nil
}

func userIDFrom(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(headerUserID))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s header is required", errBadRequest, headerUserID)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, headerUserID, raw)
	}
	return v, nil
}
