package checkout

import (
	"context"
	"errors"

	"github.com/blackandwhiteonline/storefront/internal/cart"
	"github.com/blackandwhiteonline/storefront/internal/catalog"
	"github.com/blackandwhiteonline/storefront/internal/domain"
)

// ProductLookup resolves a product variant at current catalog prices.
type ProductLookup func(ctx context.Context, productID, size, color string) (catalog.Product, error)

type ReorderResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
	Capped  []string `json:"capped,omitempty"` // added with less than the ordered quantity
}

// Reorder adds each line of order to store at the current catalog price.
// Lines whose variant can no longer be bought are skipped and reported. A
// line merges with the cart up to domain.MaxLineQuantity; a line already at
// the cap is skipped.
func Reorder(ctx context.Context, order domain.Order, store *cart.Store, lookup ProductLookup) (ReorderResult, error) {
	res := ReorderResult{Added: []string{}, Skipped: []string{}}
	for _, item := range order.Items {
		p, err := lookup(ctx, item.ProductID, item.Size, item.Color)
		if err != nil {
			if isUnavailable(err) {
				res.Skipped = append(res.Skipped, item.Key())
				continue
			}
			return res, err
		}

		qty := item.Quantity
		room := domain.MaxLineQuantity
		if existing, ok := store.Get(item.Key()); ok {
			room -= existing.Quantity
		}
		if qty > room {
			qty = room
		}
		if qty < 1 {
			res.Skipped = append(res.Skipped, item.Key())
			continue
		}
		if err := store.Add(ctx, p.Ref(), qty, item.Size, item.Color); err != nil {
			return res, err
		}
		res.Added = append(res.Added, item.Key())
		if qty < item.Quantity {
			res.Capped = append(res.Capped, item.Key())
		}
	}
	return res, nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, catalog.ErrProductNotFound) ||
		errors.Is(err, catalog.ErrUnknownSize) ||
		errors.Is(err, catalog.ErrUnknownColor) ||
		errors.Is(err, catalog.ErrOutOfStock)
}
