package coupon

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blackandwhiteonline/storefront/internal/domain"
)

//go:embed coupons.json
var defaultCoupons []byte

// Catalog is the static table of promotional codes.
type Catalog struct {
	byCode map[string]domain.Coupon
}

// NewCatalog validates and indexes coupons. Codes must be unique.
func NewCatalog(coupons []domain.Coupon) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]domain.Coupon, len(coupons))}
	for _, cp := range coupons {
		switch {
		case strings.TrimSpace(cp.Code) == "":
			return nil, fmt.Errorf("coupon with empty code")
		case !cp.Kind.Valid():
			return nil, fmt.Errorf("coupon %s: unknown discount type %q", cp.Code, cp.Kind)
		case cp.Discount < 0 || cp.MinAmount < 0:
			return nil, fmt.Errorf("coupon %s: negative amount", cp.Code)
		case cp.Kind == domain.DiscountPercentage && cp.Discount > 100:
			return nil, fmt.Errorf("coupon %s: percentage above 100", cp.Code)
		}
		if _, dup := c.byCode[cp.Code]; dup {
			return nil, fmt.Errorf("duplicate coupon code %s", cp.Code)
		}
		c.byCode[cp.Code] = cp
	}
	return c, nil
}

// ParseCatalog reads a JSON array of {code, discount, discountType, minAmount}.
func ParseCatalog(data []byte) (*Catalog, error) {
	var coupons []domain.Coupon
	if err := json.Unmarshal(data, &coupons); err != nil {
		return nil, fmt.Errorf("unmarshal coupon catalog failed: %w", err)
	}
	return NewCatalog(coupons)
}

func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coupon catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog is the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCoupons)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup is an exact, case-sensitive match.
func (c *Catalog) Lookup(code string) (domain.Coupon, bool) {
	cp, ok := c.byCode[code]
	return cp, ok
}

// All returns the coupons ordered by code.
func (c *Catalog) All() []domain.Coupon {
	out := make([]domain.Coupon, 0, len(c.byCode))
	for _, cp := range c.byCode {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
