package coupon

import (
	"context"
	"fmt"
	"sync"

	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
)

// Holder is the applied-coupon slot of a cart page or checkout session. A
// coupon stays applied only while the subtotal meets its minimum.
type Holder struct {
	m         sync.Mutex
	validator *Validator
	sink      notify.Sink
	shopperID string
	applied   *domain.Coupon
}

func NewHolder(v *Validator, sink notify.Sink, shopperID string) *Holder {
	if sink == nil {
		sink = notify.Discard
	}
	return &Holder{validator: v, sink: sink, shopperID: shopperID}
}

// Apply validates code against subtotal. On success it replaces any coupon
// already applied; on failure the current coupon is kept.
func (h *Holder) Apply(ctx context.Context, code string, subtotal int64) Result {
	res := h.validator.TryApply(code, subtotal)

	h.m.Lock()
	if res.Ok() {
		cp := res.Coupon
		h.applied = &cp
	}
	h.m.Unlock()

	switch res.Outcome {
	case Applied:
		h.emit(ctx, notify.KindCouponApplied, code,
			fmt.Sprintf("Coupon %s applied: you save %d", code, Discount(res.Coupon, subtotal)))
	case InvalidCode:
		h.emit(ctx, notify.KindCouponInvalid, code, fmt.Sprintf("Coupon %s is not valid", code))
	case MinimumNotMet:
		h.emit(ctx, notify.KindCouponMinimumNotMet, code,
			fmt.Sprintf("Coupon %s needs a minimum order of %d", code, res.Coupon.MinAmount))
	}
	return res
}

// Adopt carries a coupon applied elsewhere into h without a new notice. A
// coupon that does not qualify for subtotal is dropped with coupon_removed.
func (h *Holder) Adopt(ctx context.Context, cp domain.Coupon, subtotal int64) bool {
	if !cp.Qualifies(subtotal) {
		h.emit(ctx, notify.KindCouponRemoved, cp.Code,
			fmt.Sprintf("Coupon %s removed: minimum order of %d not met", cp.Code, cp.MinAmount))
		return false
	}
	h.m.Lock()
	defer h.m.Unlock()
	h.applied = &cp
	return true
}

// Remove detaches the coupon. It reports whether one was applied.
func (h *Holder) Remove() bool {
	h.m.Lock()
	defer h.m.Unlock()
	had := h.applied != nil
	h.applied = nil
	return had
}

func (h *Holder) Applied() (domain.Coupon, bool) {
	h.m.Lock()
	defer h.m.Unlock()
	if h.applied == nil {
		return domain.Coupon{}, false
	}
	return *h.applied, true
}

// Revalidate re-checks the applied coupon against a changed subtotal and
// detaches it, with a coupon_removed notice, when the minimum is no longer
// met. It returns whether a coupon is still applied.
func (h *Holder) Revalidate(ctx context.Context, subtotal int64) bool {
	h.m.Lock()
	if h.applied == nil {
		h.m.Unlock()
		return false
	}
	if h.applied.Qualifies(subtotal) {
		h.m.Unlock()
		return true
	}
	cp := *h.applied
	h.applied = nil
	h.m.Unlock()

	h.emit(ctx, notify.KindCouponRemoved, cp.Code,
		fmt.Sprintf("Coupon %s removed: minimum order of %d not met", cp.Code, cp.MinAmount))
	return false
}

// Discount is the applied coupon's discount on subtotal, or 0.
func (h *Holder) Discount(subtotal int64) int64 {
	cp, ok := h.Applied()
	if !ok {
		return 0
	}
	return Discount(cp, subtotal)
}

func (h *Holder) emit(ctx context.Context, kind notify.Kind, code, msg string) {
	h.sink.Notify(ctx, notify.Notice{
		Kind:       kind,
		Message:    msg,
		ShopperID:  h.shopperID,
		CouponCode: code,
	})
}
