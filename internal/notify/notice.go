package notify

import (
	"context"
	"sync"
	"time"
)

type Kind string

const (
	KindCouponApplied             Kind = "coupon_applied"
	KindCouponRemoved             Kind = "coupon_removed"
	KindCouponInvalid             Kind = "coupon_invalid"
	KindCouponMinimumNotMet       Kind = "coupon_minimum_not_met"
	KindValidationFailed          Kind = "validation_failed"
	KindOrderPlaced               Kind = "order_placed"
	KindDuplicateConfirmation     Kind = "duplicate_confirmation"
	KindPricingInvariantViolation Kind = "pricing_invariant_violation"
)

// Notice is a structured, human-readable event for the presentation layer.
type Notice struct {
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	ShopperID  string    `json:"shopper_id"`
	CheckoutID string    `json:"checkout_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	CouponCode string    `json:"coupon_code,omitempty"`
	Fields     []string  `json:"fields,omitempty"`
	At         time.Time `json:"at"`
}

// Sink receives notices. Implementations must not block the caller on
// delivery failures.
type Sink interface {
	Notify(ctx context.Context, n Notice)
}

type discard struct{}

func (discard) Notify(context.Context, Notice) {}

// Discard drops every notice.
var Discard Sink = discard{}

// Fanout delivers each notice to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, n Notice) {
	for _, s := range f {
		s.Notify(ctx, n)
	}
}

type shopperKey struct{}

// WithShopper scopes ctx to a shopper so collaborators that only see a
// context can address their notices.
func WithShopper(ctx context.Context, shopperID string) context.Context {
	return context.WithValue(ctx, shopperKey{}, shopperID)
}

// ShopperFrom returns the shopper set by WithShopper, or "".
func ShopperFrom(ctx context.Context) string {
	id, _ := ctx.Value(shopperKey{}).(string)
	return id
}

// DefaultRecorderLimit bounds the notices a Recorder holds across all shoppers.
const DefaultRecorderLimit = 1024

// Recorder keeps notices in memory until drained. Once the limit is reached
// the oldest notice is dropped. Notices without a shopper are not kept.
type Recorder struct {
	m       sync.Mutex
	limit   int
	notices []Notice
}

func NewRecorder() *Recorder {
	return NewRecorderWithLimit(DefaultRecorderLimit)
}

func NewRecorderWithLimit(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	if n.ShopperID == "" {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	r.m.Lock()
	defer r.m.Unlock()
	if len(r.notices) >= r.limit {
		drop := len(r.notices) - r.limit + 1
		r.notices = append(r.notices[:0], r.notices[drop:]...)
	}
	r.notices = append(r.notices, n)
}

// Len reports how many notices are waiting to be drained.
func (r *Recorder) Len() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.notices)
}

func (r *Recorder) All() []Notice {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// DrainFor removes and returns the shopper's notices, oldest first.
func (r *Recorder) DrainFor(shopperID string) []Notice {
	r.m.Lock()
	defer r.m.Unlock()
	var out []Notice
	kept := r.notices[:0]
	for _, n := range r.notices {
		if n.ShopperID == shopperID {
			out = append(out, n)
		} else {
			kept = append(kept, n)
		}
	}
	r.notices = kept
	return out
}
