package checkout

import (
	"context"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
)

type Summary struct {
	Items             []domain.LineItem `json:"items"`
	ItemCount         int               `json:"item_count"`
	Subtotal          int64             `json:"subtotal"`
	Shipping          int64             `json:"shipping"`
	QuotedShipping    int64             `json:"quoted_shipping"`
	FreeShipping      bool              `json:"free_shipping"`
	Discount          int64             `json:"discount"`
	Tax               int64             `json:"tax"`
	Total             int64             `json:"total"`
	CouponCode        string            `json:"coupon_code,omitempty"`
	DeliveryDays      int               `json:"delivery_days,omitempty"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery,omitempty"`
}

// View is a read-only picture of a session.
type View struct {
	ID            string                `json:"id"`
	ShopperID     string                `json:"shopper_id"`
	Stage         domain.Stage          `json:"stage"`
	Address       domain.Address        `json:"address"`
	Quote         *domain.ShippingQuote `json:"quote,omitempty"`
	PaymentMethod domain.PaymentMethod  `json:"payment_method,omitempty"`
	OrderID       string                `json:"order_id,omitempty"`
	Summary       Summary               `json:"summary"`
}

// Summary prices the snapshot with the current quote and coupon. Without a
// quote shipping is 0.
func (s *Session) Summary(ctx context.Context) Summary {
	s.m.Lock()
	var quote *domain.ShippingQuote
	if s.quote != nil {
		q := *s.quote
		quote = &q
	}
	s.m.Unlock()

	sum := Summary{
		Items:     domain.CopyItems(s.items),
		ItemCount: itemCount(s.items),
	}
	var quoted int64
	if quote != nil {
		quoted = quote.Charge
		sum.DeliveryDays = quote.DeliveryDays
		eta := quote.EstimatedDelivery
		sum.EstimatedDelivery = &eta
	}
	if cp, ok := s.coupon.Applied(); ok {
		sum.CouponCode = cp.Code
	}

	totals := s.env.pricing.Price(notify.WithShopper(ctx, s.shopperID), s.subtotal, quoted, s.coupon.Discount(s.subtotal), 0)
	sum.Subtotal = totals.Subtotal
	sum.Shipping = totals.Shipping
	sum.QuotedShipping = quoted
	sum.FreeShipping = quote != nil && totals.Shipping == 0 && quoted > 0
	sum.Discount = totals.Discount
	sum.Tax = totals.Tax
	sum.Total = totals.Total
	return sum
}

func (s *Session) View(ctx context.Context) View {
	summary := s.Summary(ctx)

	s.m.Lock()
	defer s.m.Unlock()
	v := View{
		ID:        s.id,
		ShopperID: s.shopperID,
		Stage:     s.stage,
		Address:   s.address,
		Summary:   summary,
	}
	if s.quote != nil {
		q := *s.quote
		v.Quote = &q
	}
	if s.payment != nil {
		v.PaymentMethod = s.payment.Method
	}
	if s.order != nil {
		v.OrderID = s.order.ID
		v.PaymentMethod = s.order.PaymentMethod
	}
	return v
}

func itemCount(items []domain.LineItem) int {
	var n int
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
