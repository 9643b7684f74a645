package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_DrainFor(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Notify(ctx, Notice{Kind: KindCouponApplied, ShopperID: "a"})
	r.Notify(ctx, Notice{Kind: KindCouponApplied, ShopperID: "b"})
	r.Notify(ctx, Notice{Kind: KindCouponRemoved, ShopperID: "a"})

	got := r.DrainFor("a")
	require.Len(t, got, 2)
	assert.Equal(t, KindCouponApplied, got[0].Kind)
	assert.Equal(t, KindCouponRemoved, got[1].Kind)
	assert.False(t, got[0].At.IsZero())

	assert.Empty(t, r.DrainFor("a"))
	rest := r.All()
	require.Len(t, rest, 1)
	assert.Equal(t, "b", rest[0].ShopperID)
}

func TestFanout(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	f := Fanout{a, Discard, b}

	f.Notify(context.Background(), Notice{Kind: KindOrderPlaced, ShopperID: "u"})

	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)
}

func TestRecorder_DropsOldestOverLimit(t *testing.T) {
	r := NewRecorderWithLimit(3)
	ctx := context.Background()

	for _, id := range []string{"ORD-1", "ORD-2", "ORD-3", "ORD-4", "ORD-5"} {
		r.Notify(ctx, Notice{Kind: KindOrderPlaced, ShopperID: "u", OrderID: id})
	}

	assert.Equal(t, 3, r.Len())
	got := r.DrainFor("u")
	require.Len(t, got, 3)
	assert.Equal(t, "ORD-3", got[0].OrderID)
	assert.Equal(t, "ORD-5", got[2].OrderID)
}

func TestRecorder_IgnoresNoticesWithoutShopper(t *testing.T) {
	r := NewRecorder()
	r.Notify(context.Background(), Notice{Kind: KindPricingInvariantViolation})
	assert.Zero(t, r.Len())
}

func TestShopperFrom(t *testing.T) {
	assert.Equal(t, "", ShopperFrom(context.Background()))
	assert.Equal(t, "u1", ShopperFrom(WithShopper(context.Background(), "u1")))
}
