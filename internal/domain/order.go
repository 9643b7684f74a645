package domain

import "time"

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Order is the immutable record of a completed checkout. It is a complete
// snapshot: nothing in it points back into the cart or the catalog.
type Order struct {
	ID                string        `json:"id"`
	CheckoutID        string        `json:"checkout_id"`
	ShopperID         string        `json:"shopper_id"`
	CreatedAt         time.Time     `json:"created_at"`
	Items             []LineItem    `json:"items"`
	Subtotal          int64         `json:"subtotal"`
	ShippingCharge    int64         `json:"shipping_charge"`
	Discount          int64         `json:"discount"`
	Tax               int64         `json:"tax"`
	Total             int64         `json:"total"`
	CouponCode        string        `json:"coupon_code,omitempty"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	CardLast4         string        `json:"card_last4,omitempty"`
	ShippingAddress   Address       `json:"shipping_address"`
	DeliveryDays      int           `json:"delivery_days"`
	EstimatedDelivery time.Time     `json:"estimated_delivery"`
	Status            OrderStatus   `json:"status"`
}

func (o Order) ItemCount() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
