package pricing

import (
	"context"
	"log/slog"

	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
)

// DefaultFreeShippingThreshold is the subtotal at which shipping becomes free.
const DefaultFreeShippingThreshold int64 = 5000

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

type Engine struct {
	freeShippingThreshold int64 // 0 disables free shipping
	logger                *slog.Logger
	sink                  notify.Sink
}

type Option func(*Engine)

// WithSink sends a pricing_invariant_violation notice to sink whenever a
// discount is clamped. The shopper is taken from notify.ShopperFrom(ctx).
func WithSink(sink notify.Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

func NewEngine(freeShippingThreshold int64, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{freeShippingThreshold: freeShippingThreshold, logger: logger, sink: notify.Discard}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) FreeShippingThreshold() int64 {
	return e.freeShippingThreshold
}

// ShippingCharge applies the store-wide free-shipping policy to a quoted
// charge.
func (e *Engine) ShippingCharge(subtotal, quoted int64) int64 {
	if e.freeShippingThreshold > 0 && subtotal >= e.freeShippingThreshold {
		return 0
	}
	if quoted < 0 {
		return 0
	}
	return quoted
}

// ComputeTotal returns subtotal + shipping - discount, never below zero.
func (e *Engine) ComputeTotal(ctx context.Context, subtotal, shipping, discount int64) int64 {
	d := e.clampDiscount(ctx, subtotal, shipping, discount)
	return subtotal + shipping - d
}

// Price prices an order. quotedShipping is the estimator's charge before the
// free-shipping policy; tax is passed through and added to the total.
func (e *Engine) Price(ctx context.Context, subtotal, quotedShipping, discount, tax int64) Totals {
	shipping := e.ShippingCharge(subtotal, quotedShipping)
	d := e.clampDiscount(ctx, subtotal, shipping, discount)
	if tax < 0 {
		tax = 0
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: d,
		Tax:      tax,
		Total:    subtotal + shipping - d + tax,
	}
}

// clampDiscount bounds discount to [0, subtotal+shipping]. Exceeding the
// upper bound is a caller bug: it is logged and the shopper is told.
func (e *Engine) clampDiscount(ctx context.Context, subtotal, shipping, discount int64) int64 {
	if discount < 0 {
		return 0
	}
	limit := subtotal + shipping
	if limit < 0 {
		limit = 0
	}
	if discount > limit {
		e.logger.WarnContext(ctx, "pricing invariant violation: discount clamped",
			"error", domain.ErrPricingInvariant,
			"subtotal", subtotal,
			"shipping", shipping,
			"discount", discount,
			"clamped_discount", limit)
		e.sink.Notify(ctx, notify.Notice{
			Kind:      notify.KindPricingInvariantViolation,
			Message:   "Your discount was adjusted to the order value",
			ShopperID: notify.ShopperFrom(ctx),
		})
		return limit
	}
	return discount
}
