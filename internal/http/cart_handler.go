package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/cart"
	"github.com/blackandwhiteonline/storefront/internal/checkout"
	"github.com/blackandwhiteonline/storefront/internal/coupon"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/go-chi/chi/v5"
)

// MaxLineQuantity bounds the quantity of a single cart line.
const MaxLineQuantity = domain.MaxLineQuantity

// CouponSlots hands out the coupon slot of a shopper's cart page.
type CouponSlots interface {
	CartCoupon(shopperID string) *coupon.Holder
}

type CartHandler struct {
	carts   *cart.Service
	coupons CouponSlots
	resolve checkout.ProductLookup
	notices *notify.Recorder
	timeout time.Duration
}

func NewCartHandler(carts *cart.Service, coupons CouponSlots, resolve checkout.ProductLookup, notices *notify.Recorder, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		coupons: coupons,
		resolve: resolve,
		notices: notices,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CouponRequestDTO struct {
	Code string `json:"code"`
}

type CartItemDTO struct {
	Key       string `json:"key"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Subtotal  int64  `json:"subtotal"`
}

type CartResponseDTO struct {
	ShopperID  string          `json:"shopper_id"`
	Items      []CartItemDTO   `json:"items"`
	ItemCount  int             `json:"item_count"`
	Subtotal   int64           `json:"subtotal"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Discount   int64           `json:"discount"`
	Notices    []notify.Notice `json:"notices,omitempty"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	shopperID := getShopperID(r.Context())
	store, err := h.carts.Cart(ctx, shopperID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > MaxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.resolve(ctx, req.ProductID, req.Size, req.Color)
	if err != nil {
		handleError(w, r, err)
		return
	}

	store, err := h.carts.Cart(ctx, getShopperID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	key := domain.CompositeKey(req.ProductID, req.Size, req.Color)
	if existing, ok := store.Get(key); ok && existing.Quantity+req.Quantity > MaxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := store.Add(ctx, product.Ref(), req.Quantity, req.Size, req.Color); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartResponse(store))
}

// PUT /api/v1/cart/items/{key}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := itemKey(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_key", "key must be product|size|color")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// 0 removes the line
	if req.Quantity < 0 || req.Quantity > MaxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	store, err := h.carts.Cart(ctx, getShopperID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := store.SetQuantity(ctx, key, req.Quantity); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

// DELETE /api/v1/cart/items/{key}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := itemKey(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_key", "key must be product|size|color")
		return
	}

	store, err := h.carts.Cart(ctx, getShopperID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := store.Remove(ctx, key); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, err := h.carts.Cart(ctx, getShopperID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := store.Clear(ctx); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

// POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	shopperID := getShopperID(r.Context())
	store, err := h.carts.Cart(ctx, shopperID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	res := h.coupons.CartCoupon(shopperID).Apply(ctx, req.Code, store.Subtotal())
	if !res.Ok() {
		handleErrorWithNotices(w, r, res.Err(), h.notices.DrainFor(shopperID))
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

// DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	shopperID := getShopperID(r.Context())
	store, err := h.carts.Cart(ctx, shopperID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.coupons.CartCoupon(shopperID).Remove()
	respondJSON(w, http.StatusOK, h.cartResponse(store))
}

func (h *CartHandler) cartResponse(store *cart.Store) CartResponseDTO {
	items := store.Items()
	resp := CartResponseDTO{
		ShopperID: store.ShopperID(),
		Items:     make([]CartItemDTO, 0, len(items)),
		ItemCount: store.ItemCount(),
		Subtotal:  store.Subtotal(),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, CartItemDTO{
			Key:       item.Key(),
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Subtotal:  item.Subtotal(),
		})
	}

	holder := h.coupons.CartCoupon(store.ShopperID())
	if cp, ok := holder.Applied(); ok {
		resp.CouponCode = cp.Code
		resp.Discount = holder.Discount(resp.Subtotal)
	}
	resp.Notices = h.notices.DrainFor(store.ShopperID())
	return resp
}

func itemKey(r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || strings.Count(key, "|") != 2 {
		return "", false
	}
	return key, true
}
