package coupon

import (
	"github.com/blackandwhiteonline/storefront/internal/domain"
)

type Outcome int

const (
	Applied Outcome = iota
	InvalidCode
	MinimumNotMet
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case InvalidCode:
		return "invalid_code"
	case MinimumNotMet:
		return "minimum_not_met"
	}
	return "unknown"
}

// Result is the tagged outcome of TryApply. Coupon is set for Applied and
// MinimumNotMet.
type Result struct {
	Outcome Outcome
	Coupon  domain.Coupon
}

func (r Result) Ok() bool {
	return r.Outcome == Applied
}

// Err maps a rejected result onto the error taxonomy; nil when applied.
func (r Result) Err() error {
	switch r.Outcome {
	case InvalidCode:
		return domain.ErrInvalidCoupon
	case MinimumNotMet:
		return domain.ErrCouponMinimumNotMet
	}
	return nil
}

type Validator struct {
	catalog *Catalog
}

func NewValidator(catalog *Catalog) *Validator {
	return &Validator{catalog: catalog}
}

func (v *Validator) Catalog() *Catalog {
	return v.catalog
}

func (v *Validator) TryApply(code string, subtotal int64) Result {
	cp, ok := v.catalog.Lookup(code)
	if !ok {
		return Result{Outcome: InvalidCode}
	}
	if !cp.Qualifies(subtotal) {
		return Result{Outcome: MinimumNotMet, Coupon: cp}
	}
	return Result{Outcome: Applied, Coupon: cp}
}

// Discount is the amount cp takes off subtotal. Percentages round half up;
// the result never exceeds subtotal.
func Discount(cp domain.Coupon, subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var d int64
	switch cp.Kind {
	case domain.DiscountPercentage:
		d = (subtotal*cp.Discount + 50) / 100
	case domain.DiscountFixed:
		d = cp.Discount
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}
