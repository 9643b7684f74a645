package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/blackandwhiteonline/storefront/internal/domain"
)

//go:embed products.json
var defaultProducts []byte

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownSize     = errors.New("size not offered for product")
	ErrUnknownColor    = errors.New("color not offered for product")
	ErrOutOfStock      = errors.New("size is out of stock")
)

type Product struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Price  int64    `json:"price"`
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}

func (p Product) Ref() domain.ProductRef {
	return domain.ProductRef{ID: p.ID, Name: p.Name, UnitPrice: p.Price}
}

func (p Product) OffersSize(size string) bool {
	return contains(p.Sizes, size)
}

func (p Product) OffersColor(color string) bool {
	return contains(p.Colors, color)
}

// Lookup is the read-only catalog boundary the core consumes.
type Lookup interface {
	Product(ctx context.Context, id string) (Product, error)
}

type Memory struct {
	products map[string]Product
}

func NewMemory(products []Product) *Memory {
	m := &Memory{products: make(map[string]Product, len(products))}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

// Default is the built-in catalog.
func Default() *Memory {
	var products []Product
	if err := json.Unmarshal(defaultProducts, &products); err != nil {
		panic(fmt.Sprintf("catalog: embedded products: %v", err))
	}
	return NewMemory(products)
}

func (m *Memory) Product(_ context.Context, id string) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// All returns every product ordered by id.
func (m *Memory) All() []Product {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
