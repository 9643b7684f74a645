package domain

import "strings"

// MaxLineQuantity bounds the quantity of a single cart line when a shopper
// adds or reorders. The cart itself only rejects quantities below 1.
const MaxLineQuantity = 99

// ProductRef is the catalog data a shopper picks when adding to the cart.
type ProductRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
}

type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CompositeKey identifies a distinct purchasable line: product + size + color.
func CompositeKey(productID, size, color string) string {
	return strings.Join([]string{productID, size, color}, "|")
}

func (l LineItem) Key() string {
	return CompositeKey(l.ProductID, l.Size, l.Color)
}

func (l LineItem) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// SumSubtotal returns the sum of unit price * quantity over items.
func SumSubtotal(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CopyItems returns an independent copy of items.
func CopyItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
