package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/checkout"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	orders  *orders.Service
	manager *checkout.Manager
	resolve checkout.ProductLookup
	timeout time.Duration
}

func NewOrdersHandler(orders *orders.Service, manager *checkout.Manager, resolve checkout.ProductLookup, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		manager: manager,
		resolve: resolve,
		timeout: timeout,
	}
}

type OrderSummaryDTO struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	ItemCount int                `json:"item_count"`
	Total     int64              `json:"total"`
	Status    domain.OrderStatus `json:"status"`
}

type OrdersResponseDTO struct {
	Orders []OrderSummaryDTO `json:"orders"`
}

// GET /api/v1/orders?limit=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	repo := h.orders.For(getShopperID(r.Context()))

	var (
		list []domain.Order
		err  error
	)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, convErr := strconv.Atoi(raw)
		if convErr != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		list, err = repo.ListRecent(ctx, limit)
	} else {
		list, err = repo.ListAll(ctx)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := OrdersResponseDTO{Orders: make([]OrderSummaryDTO, 0, len(list))}
	for _, o := range list {
		resp.Orders = append(resp.Orders, OrderSummaryDTO{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			ItemCount: o.ItemCount(),
			Total:     o.Total,
			Status:    o.Status,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.For(getShopperID(r.Context())).FindByID(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// POST /api/v1/orders/{order_id}/reorder
func (h *OrdersHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.manager.Reorder(ctx, getShopperID(r.Context()), chi.URLParam(r, "order_id"), h.resolve)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
