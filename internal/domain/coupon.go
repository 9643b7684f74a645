package domain

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

// Coupon is a promotional rule. Code matching is case-sensitive.
type Coupon struct {
	Code      string       `json:"code"`
	Discount  int64        `json:"discount"`
	Kind      DiscountKind `json:"discountType"`
	MinAmount int64        `json:"minAmount"`
}

// Qualifies reports whether subtotal meets the coupon's minimum.
func (c Coupon) Qualifies(subtotal int64) bool {
	return subtotal >= c.MinAmount
}
