package coupon

import (
	"context"
	"testing"

	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHolder() (*Holder, *notify.Recorder) {
	rec := notify.NewRecorder()
	return NewHolder(NewValidator(DefaultCatalog()), rec, "u1"), rec
}

func TestHolder_DetachesWhenSubtotalDrops(t *testing.T) {
	h, rec := newHolder()
	ctx := context.Background()

	res := h.Apply(ctx, "WELCOME10", 1200)
	require.True(t, res.Ok())
	assert.Equal(t, int64(120), h.Discount(1200))

	assert.True(t, h.Revalidate(ctx, 1000))
	assert.False(t, h.Revalidate(ctx, 800))

	_, ok := h.Applied()
	assert.False(t, ok)
	assert.Equal(t, int64(0), h.Discount(800))

	notices := rec.DrainFor("u1")
	require.Len(t, notices, 2)
	assert.Equal(t, notify.KindCouponApplied, notices[0].Kind)
	assert.Equal(t, notify.KindCouponRemoved, notices[1].Kind)
	assert.Equal(t, "WELCOME10", notices[1].CouponCode)

	// no coupon, nothing to re-check
	assert.False(t, h.Revalidate(ctx, 5000))
	assert.Empty(t, rec.All())
}

func TestHolder_FailedApplyKeepsCurrentCoupon(t *testing.T) {
	h, rec := newHolder()
	ctx := context.Background()

	require.True(t, h.Apply(ctx, "WELCOME10", 2000).Ok())

	res := h.Apply(ctx, "SAVE20", 2000)
	assert.Equal(t, MinimumNotMet, res.Outcome)
	res = h.Apply(ctx, "BOGUS", 2000)
	assert.Equal(t, InvalidCode, res.Outcome)

	cp, ok := h.Applied()
	require.True(t, ok)
	assert.Equal(t, "WELCOME10", cp.Code)

	kinds := []notify.Kind{}
	for _, n := range rec.All() {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []notify.Kind{notify.KindCouponApplied, notify.KindCouponMinimumNotMet, notify.KindCouponInvalid}, kinds)
}

func TestHolder_Remove(t *testing.T) {
	h, _ := newHolder()
	assert.False(t, h.Remove())

	h.Apply(context.Background(), "FLAT200", 1500)
	assert.True(t, h.Remove())
	_, ok := h.Applied()
	assert.False(t, ok)
}

func TestHolder_Adopt(t *testing.T) {
	h, rec := newHolder()
	ctx := context.Background()
	cp, _ := DefaultCatalog().Lookup("WELCOME10")

	assert.True(t, h.Adopt(ctx, cp, 1500))
	got, ok := h.Applied()
	require.True(t, ok)
	assert.Equal(t, "WELCOME10", got.Code)
	assert.Empty(t, rec.All(), "adopting a qualifying coupon is silent")

	other, _ := newHolder()
	assert.False(t, other.Adopt(ctx, cp, 500))
	_, ok = other.Applied()
	assert.False(t, ok)
}
