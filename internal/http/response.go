package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/blackandwhiteonline/storefront/internal/catalog"
	"github.com/blackandwhiteonline/storefront/internal/checkout"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/blackandwhiteonline/storefront/internal/orders"
)

type ErrorResponse struct {
	Error   string          `json:"error"`
	Code    string          `json:"code,omitempty"`
	Details string          `json:"details,omitempty"`
	Fields  []string        `json:"fields,omitempty"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts service errors to HTTP status codes
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(r, err)
	respondJSON(w, status, body)
}

// handleErrorWithNotices is handleError for operations that also told the
// shopper about the failure; those notices ride along in the error body.
func handleErrorWithNotices(w http.ResponseWriter, r *http.Request, err error, notices []notify.Notice) {
	status, body := errorResponse(r, err)
	body.Notices = notices
	respondJSON(w, status, body)
}

func errorResponse(r *http.Request, err error) (int, ErrorResponse) {
	var (
		httpStatus int
		code       string
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		fields := domain.ValidationFields(err)
		return http.StatusBadRequest, ErrorResponse{
			Error:   "some required fields are missing or invalid",
			Code:    "validation_failed",
			Details: strings.Join(fields, ", "),
			Fields:  fields,
		}
	case errors.Is(err, domain.ErrInvalidCoupon):
		httpStatus, code = http.StatusUnprocessableEntity, "invalid_coupon"
	case errors.Is(err, domain.ErrCouponMinimumNotMet):
		httpStatus, code = http.StatusUnprocessableEntity, "coupon_minimum_not_met"
	case errors.Is(err, domain.ErrIllegalTransition):
		httpStatus, code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus, code = http.StatusConflict, "empty_cart"
	case errors.Is(err, checkout.ErrSessionNotFound):
		httpStatus, code = http.StatusNotFound, "checkout_not_found"
	case errors.Is(err, checkout.ErrConfirmationInFlight):
		httpStatus, code = http.StatusConflict, "confirmation_in_flight"
	case errors.Is(err, checkout.ErrPaymentFailed):
		httpStatus, code = http.StatusPaymentRequired, "payment_failed"
	case errors.Is(err, orders.ErrOrderNotFound):
		httpStatus, code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, catalog.ErrProductNotFound):
		httpStatus, code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, catalog.ErrUnknownSize):
		httpStatus, code = http.StatusBadRequest, "invalid_size"
	case errors.Is(err, catalog.ErrUnknownColor):
		httpStatus, code = http.StatusBadRequest, "invalid_color"
	case errors.Is(err, catalog.ErrOutOfStock):
		httpStatus, code = http.StatusConflict, "out_of_stock"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", getRequestID(r.Context()), "error", err)
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal_error"}
	}

	return httpStatus, ErrorResponse{Error: err.Error(), Code: code}
}
