package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	p, err := c.Product(context.Background(), "tee-classic")
	require.NoError(t, err)
	assert.Equal(t, int64(900), p.Price)
	assert.True(t, p.OffersSize("M"))
	assert.False(t, p.OffersColor("pink"))

	ref := p.Ref()
	assert.Equal(t, "tee-classic", ref.ID)
	assert.Equal(t, "Classic Cotton Tee", ref.Name)

	_, err = c.Product(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	all := c.All()
	require.NotEmpty(t, all)
	for _, p := range all {
		assert.Positive(t, p.Price, p.ID)
		assert.NotEmpty(t, p.Sizes, p.ID)
		assert.NotEmpty(t, p.Colors, p.ID)
	}
}

func TestStockTable(t *testing.T) {
	s := NewStockTable([]StockEntry{
		{ProductID: "p1", Size: "M", Quantity: 0},
		{ProductID: "p1", Size: "L", Quantity: 2},
	})

	assert.False(t, s.Available("p1", "M"))
	assert.True(t, s.Available("p1", "L"))
	assert.True(t, s.Available("p1", "S"), "untracked pairs are available")

	// deterministic: repeated reads agree
	for i := 0; i < 10; i++ {
		assert.False(t, s.Available("p1", "M"))
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	c := Default()
	stock := DefaultStock()

	p, err := Resolve(ctx, c, stock, "tee-classic", "M", "black")
	require.NoError(t, err)
	assert.Equal(t, "tee-classic", p.ID)

	_, err = Resolve(ctx, c, stock, "tee-classic", "XXL", "black")
	assert.ErrorIs(t, err, ErrUnknownSize)

	_, err = Resolve(ctx, c, stock, "tee-classic", "M", "pink")
	assert.ErrorIs(t, err, ErrUnknownColor)

	_, err = Resolve(ctx, c, stock, "tee-classic", "XL", "black")
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = Resolve(ctx, c, stock, "ghost", "M", "black")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = Resolve(ctx, c, nil, "tee-classic", "XL", "black")
	assert.NoError(t, err, "nil stock table skips the availability check")
}
