package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appPayment "github.com/Zhima-Mochi/petstore-core/internal/application/payment"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/observability/logctx"
	"github.com/go-chi/chi/v5/middleware"
)

type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeInternal = "INTERNAL_ERROR"
	codeGateway  = "PAYMENT_GATEWAY_ERROR"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindInvalidInput:      http.StatusBadRequest,
	apperr.KindInsufficientStock: http.StatusConflict,
	apperr.KindInvalidTransition: http.StatusConflict,
	apperr.KindValidation:        http.StatusUnprocessableEntity,
	apperr.KindConflict:          http.StatusConflict,
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	writeJSON(w, status, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success:   false,
		Message:   message,
		Error:     &APIError{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeDomainError maps an error kind to its status code. Errors without a
// kind are logged and reported as a generic 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, appPayment.ErrGateway) {
		logctx.FromOr(r.Context(), h.log).Warn("payment_gateway_error", observability.F("error", err))
		writeError(w, r, http.StatusBadGateway, codeGateway, "payment gateway unavailable")
		return
	}
	kind := apperr.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logctx.FromOr(r.Context(), h.log).Error("http_internal_error", observability.F("error", err))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}
	writeError(w, r, status, string(kind), err.Error())
}
