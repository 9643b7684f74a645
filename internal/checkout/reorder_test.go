package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/blackandwhiteonline/storefront/internal/catalog"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogLookup(c *catalog.Memory, stock *catalog.StockTable) ProductLookup {
	return func(ctx context.Context, id, size, color string) (catalog.Product, error) {
		return catalog.Resolve(ctx, c, stock, id, size, color)
	}
}

func TestReorder_UsesCurrentPricesAndSkipsUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := catalog.NewMemory([]catalog.Product{
		{ID: "tee", Name: "Tee", Price: 950, Sizes: []string{"M"}, Colors: []string{"black"}},
		{ID: "cap", Name: "Cap", Price: 450, Sizes: []string{"ONE"}, Colors: []string{"black"}},
	})
	stock := catalog.NewStockTable([]catalog.StockEntry{{ProductID: "cap", Size: "ONE", Quantity: 0}})

	order := domain.Order{
		ID:        "ORD-1",
		ShopperID: "u1",
		Items: []domain.LineItem{
			{ProductID: "tee", Name: "Tee", UnitPrice: 900, Quantity: 2, Size: "M", Color: "black"},
			{ProductID: "cap", Name: "Cap", UnitPrice: 450, Quantity: 1, Size: "ONE", Color: "black"},
			{ProductID: "gone", Name: "Retired", UnitPrice: 100, Quantity: 1},
		},
	}
	require.NoError(t, f.orders.For("u1").Append(ctx, order))

	res, err := f.manager.Reorder(ctx, "u1", "ORD-1", catalogLookup(c, stock))
	require.NoError(t, err)
	assert.Equal(t, []string{"tee|M|black"}, res.Added)
	assert.Equal(t, []string{"cap|ONE|black", "gone||"}, res.Skipped)

	items := f.cart(t, "u1").Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(950), items[0].UnitPrice)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestReorder_UnknownOrder(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.manager.Reorder(context.Background(), "u1", "ORD-404", catalogLookup(catalog.Default(), nil))
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestReorder_LookupFailureStops(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := domain.Order{Items: []domain.LineItem{{ProductID: "tee", Quantity: 1}}}
	boom := errors.New("catalog down")

	_, err := Reorder(ctx, order, f.cart(t, "u1"), func(context.Context, string, string, string) (catalog.Product, error) {
		return catalog.Product{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.cart(t, "u1").Items())
}

func TestReorder_RespectsLineCap(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := catalog.NewMemory([]catalog.Product{
		{ID: "tee", Name: "Tee", Price: 950, Sizes: []string{"M"}, Colors: []string{"black"}},
		{ID: "cap", Name: "Cap", Price: 450, Sizes: []string{"ONE"}, Colors: []string{"black"}},
	})
	store := f.cart(t, "u1")
	require.NoError(t, store.Add(ctx, domain.ProductRef{ID: "tee", Name: "Tee", UnitPrice: 950}, 95, "M", "black"))
	require.NoError(t, store.Add(ctx, domain.ProductRef{ID: "cap", Name: "Cap", UnitPrice: 450}, domain.MaxLineQuantity, "ONE", "black"))

	order := domain.Order{
		ID:        "ORD-2",
		ShopperID: "u1",
		Items: []domain.LineItem{
			{ProductID: "tee", Name: "Tee", UnitPrice: 900, Quantity: 10, Size: "M", Color: "black"},
			{ProductID: "cap", Name: "Cap", UnitPrice: 450, Quantity: 1, Size: "ONE", Color: "black"},
		},
	}
	require.NoError(t, f.orders.For("u1").Append(ctx, order))

	res, err := f.manager.Reorder(ctx, "u1", "ORD-2", catalogLookup(c, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"tee|M|black"}, res.Added)
	assert.Equal(t, []string{"tee|M|black"}, res.Capped)
	assert.Equal(t, []string{"cap|ONE|black"}, res.Skipped)

	tee, ok := store.Get("tee|M|black")
	require.True(t, ok)
	assert.Equal(t, domain.MaxLineQuantity, tee.Quantity)
	capLine, _ := store.Get("cap|ONE|black")
	assert.Equal(t, domain.MaxLineQuantity, capLine.Quantity)
}
