package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/checkout"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	manager *checkout.Manager
	notices *notify.Recorder
	timeout time.Duration
}

func NewCheckoutHandler(manager *checkout.Manager, notices *notify.Recorder, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		manager: manager,
		notices: notices,
		timeout: timeout,
	}
}

type CheckoutResponseDTO struct {
	checkout.View
	QuoteAvailable bool            `json:"quote_available"`
	Notices        []notify.Notice `json:"notices,omitempty"`
}

type ConfirmResponseDTO struct {
	Order   domain.Order    `json:"order"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, err := h.manager.Begin(ctx, getShopperID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.view(ctx, s))
}

// GET /api/v1/checkout/{checkout_id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.view(r.Context(), s))
}

// PUT /api/v1/checkout/{checkout_id}/shipping
func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if _, _, err := s.SetAddress(ctx, addr); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(ctx, s))
}

// POST /api/v1/checkout/{checkout_id}/proceed
func (h *CheckoutHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ProceedToPayment(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(ctx, s))
}

// POST /api/v1/checkout/{checkout_id}/coupon
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req CouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := s.ApplyCoupon(ctx, req.Code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !res.Ok() {
		h.fail(w, r, res.Err())
		return
	}
	respondJSON(w, http.StatusOK, h.view(ctx, s))
}

// DELETE /api/v1/checkout/{checkout_id}/coupon
func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.RemoveCoupon(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(r.Context(), s))
}

// PUT /api/v1/checkout/{checkout_id}/payment
func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var details domain.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := s.SelectPayment(r.Context(), details); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(r.Context(), s))
}

// POST /api/v1/checkout/{checkout_id}/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Back(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(r.Context(), s))
}

// POST /api/v1/checkout/{checkout_id}/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	shopperID := getShopperID(r.Context())
	order, err := h.manager.Confirm(ctx, shopperID, chi.URLParam(r, "checkout_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ConfirmResponseDTO{
		Order:   order,
		Notices: h.notices.DrainFor(shopperID),
	})
}

// DELETE /api/v1/checkout/{checkout_id}
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r.Context())
	if err := h.manager.Abandon(r.Context(), shopperID, chi.URLParam(r, "checkout_id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	s, err := h.manager.Session(getShopperID(r.Context()), chi.URLParam(r, "checkout_id"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *CheckoutHandler) view(ctx context.Context, s *checkout.Session) CheckoutResponseDTO {
	v := s.View(ctx)
	return CheckoutResponseDTO{
		View:           v,
		QuoteAvailable: v.Quote != nil,
		Notices:        h.notices.DrainFor(s.ShopperID()),
	}
}

// fail answers with err and hands over whatever the operation told the shopper.
func (h *CheckoutHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	handleErrorWithNotices(w, r, err, h.notices.DrainFor(getShopperID(r.Context())))
}
