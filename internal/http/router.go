package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter mounts the REST API over a, instrumented with otelhttp.
func NewRouter(a *app.App, cfg RouterConfig) http.Handler {
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20 // 1MB
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cartHandler := NewCartHandler(a.Carts, a.Checkout, a.ResolveProduct, a.Notices, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(a.Checkout, a.Notices, cfg.RequestTimeout)
	ordersHandler := NewOrdersHandler(a.Orders, a.Checkout, a.ResolveProduct, cfg.RequestTimeout)
	storefrontHandler := NewStorefrontHandler(a.Catalog, a.Stock, a.Estimator, a.Coupons)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(MockAuthMiddleware)
	r.Use(RequestLogger(logger))
	r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", storefrontHandler.Products)
		r.Get("/shipping/quote", storefrontHandler.Quote)
		r.Get("/coupons", storefrontHandler.Coupons)
		r.Post("/coupons/validate", storefrontHandler.ValidateCoupon)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{key}", cartHandler.UpdateQuantity)
			r.Delete("/items/{key}", cartHandler.RemoveItem)
			r.Post("/coupon", cartHandler.ApplyCoupon)
			r.Delete("/coupon", cartHandler.RemoveCoupon)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Begin)
			r.Route("/{checkout_id}", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Delete("/", checkoutHandler.Abandon)
				r.Put("/shipping", checkoutHandler.SetShipping)
				r.Post("/proceed", checkoutHandler.Proceed)
				r.Post("/coupon", checkoutHandler.ApplyCoupon)
				r.Delete("/coupon", checkoutHandler.RemoveCoupon)
				r.Put("/payment", checkoutHandler.SelectPayment)
				r.Post("/back", checkoutHandler.Back)
				r.Post("/confirm", checkoutHandler.Confirm)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Post("/{order_id}/reorder", ordersHandler.Reorder)
		})
	})

	return otelhttp.NewHandler(r, "storefront-http")
}
