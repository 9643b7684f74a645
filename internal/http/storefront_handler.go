package http

import (
	"encoding/json"
	"net/http"

	"github.com/blackandwhiteonline/storefront/internal/catalog"
	"github.com/blackandwhiteonline/storefront/internal/coupon"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/shipping"
)

// StorefrontHandler serves the read-only lookups: products, shipping quotes
// and coupon previews.
type StorefrontHandler struct {
	catalog   *catalog.Memory
	stock     *catalog.StockTable
	estimator *shipping.Estimator
	coupons   *coupon.Validator
}

func NewStorefrontHandler(products *catalog.Memory, stock *catalog.StockTable, estimator *shipping.Estimator, coupons *coupon.Validator) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:   products,
		stock:     stock,
		estimator: estimator,
		coupons:   coupons,
	}
}

type ProductResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Price   int64    `json:"price"`
	Sizes   []string `json:"sizes"`
	Colors  []string `json:"colors"`
	SoldOut []string `json:"sold_out,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type ValidateCouponRequestDTO struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

type ValidateCouponResponseDTO struct {
	Code      string `json:"code"`
	Outcome   string `json:"outcome"`
	Discount  int64  `json:"discount"`
	MinAmount int64  `json:"min_amount,omitempty"`
}

// GET /api/v1/products
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	all := h.catalog.All()
	products := make([]ProductResponse, len(all))
	for i, p := range all {
		products[i] = ProductResponse{
			ID:     p.ID,
			Name:   p.Name,
			Price:  p.Price,
			Sizes:  p.Sizes,
			Colors: p.Colors,
		}
		for _, size := range p.Sizes {
			if !h.stock.Available(p.ID, size) {
				products[i].SoldOut = append(products[i].SoldOut, size)
			}
		}
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/shipping/quote?code=
func (h *StorefrontHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, ok := h.estimator.Quote(r.URL.Query().Get("code"))
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "quote_unavailable", "postal code must be 6 digits")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// POST /api/v1/coupons/validate
func (h *StorefrontHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Subtotal < 0 {
		respondError(w, http.StatusBadRequest, "invalid_subtotal", "subtotal must not be negative")
		return
	}

	res := h.coupons.TryApply(req.Code, req.Subtotal)
	resp := ValidateCouponResponseDTO{
		Code:    req.Code,
		Outcome: res.Outcome.String(),
	}
	if res.Outcome != coupon.InvalidCode {
		resp.MinAmount = res.Coupon.MinAmount
	}
	if res.Ok() {
		resp.Discount = coupon.Discount(res.Coupon, req.Subtotal)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Coupons lists the active catalog so the cart page can advertise offers.
// GET /api/v1/coupons
func (h *StorefrontHandler) Coupons(w http.ResponseWriter, r *http.Request) {
	all := h.coupons.Catalog().All()
	if all == nil {
		all = []domain.Coupon{}
	}
	respondJSON(w, http.StatusOK, all)
}
