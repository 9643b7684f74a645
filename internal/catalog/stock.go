package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed stock.json
var defaultStock []byte

type StockEntry struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type stockKey struct {
	productID string
	size      string
}

// StockTable is a fixed availability table keyed by (product, size). A pair
// with no entry is available; an entry with quantity 0 is sold out.
type StockTable struct {
	levels map[stockKey]int
}

func NewStockTable(entries []StockEntry) *StockTable {
	t := &StockTable{levels: make(map[stockKey]int, len(entries))}
	for _, e := range entries {
		t.levels[stockKey{e.ProductID, e.Size}] = e.Quantity
	}
	return t
}

func DefaultStock() *StockTable {
	var entries []StockEntry
	if err := json.Unmarshal(defaultStock, &entries); err != nil {
		panic(fmt.Sprintf("catalog: embedded stock: %v", err))
	}
	return NewStockTable(entries)
}

func (t *StockTable) Available(productID, size string) bool {
	q, tracked := t.levels[stockKey{productID, size}]
	return !tracked || q > 0
}

// Resolve looks a variant up and checks it can be added to a cart.
func Resolve(ctx context.Context, lookup Lookup, stock *StockTable, productID, size, color string) (Product, error) {
	p, err := lookup.Product(ctx, productID)
	if err != nil {
		return Product{}, err
	}
	if !p.OffersSize(size) {
		return Product{}, fmt.Errorf("%w: %s %s", ErrUnknownSize, productID, size)
	}
	if !p.OffersColor(color) {
		return Product{}, fmt.Errorf("%w: %s %s", ErrUnknownColor, productID, color)
	}
	if stock != nil && !stock.Available(productID, size) {
		return Product{}, fmt.Errorf("%w: %s %s", ErrOutOfStock, productID, size)
	}
	return p, nil
}
