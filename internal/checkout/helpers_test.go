package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/cart"
	"github.com/blackandwhiteonline/storefront/internal/coupon"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/blackandwhiteonline/storefront/internal/orders"
	"github.com/blackandwhiteonline/storefront/internal/pricing"
	"github.com/blackandwhiteonline/storefront/internal/shipping"
	"github.com/blackandwhiteonline/storefront/internal/storage"
	"github.com/blackandwhiteonline/storefront/pkg/logger"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 30, 10, 0, 0, 0, time.UTC)

var (
	productA = domain.ProductRef{ID: "productA", Name: "Product A", UnitPrice: 900}
	productB = domain.ProductRef{ID: "productB", Name: "Product B", UnitPrice: 300}
)

type fixture struct {
	manager  *Manager
	carts    *cart.Service
	orders   *orders.Service
	storage  *storage.Memory
	recorder *notify.Recorder
}

func newFixture(t *testing.T, processor PaymentProcessor) *fixture {
	t.Helper()
	st := storage.NewMemory()
	rec := notify.NewRecorder()
	log := logger.Discard()
	clock := func() time.Time { return fixedNow }

	carts := cart.NewService(st, log)
	ord := orders.NewService(st, log)
	m := NewManager(Deps{
		Carts:     carts,
		Orders:    ord,
		Validator: coupon.NewValidator(coupon.DefaultCatalog()),
		Estimator: shipping.NewEstimator(shipping.WithClock(clock)),
		Pricing:   pricing.NewEngine(pricing.DefaultFreeShippingThreshold, log),
		Processor: processor,
		Sink:      rec,
		Logger:    log,
		Clock:     clock,
	})
	return &fixture{manager: m, carts: carts, orders: ord, storage: st, recorder: rec}
}

func (f *fixture) cart(t *testing.T, shopperID string) *cart.Store {
	t.Helper()
	s, err := f.carts.Cart(context.Background(), shopperID)
	require.NoError(t, err)
	return s
}

func fullAddress(postalCode string) domain.Address {
	return domain.Address{
		FullName:   "Asha Rao",
		Phone:      "9876543210",
		Line1:      "12 MG Road",
		City:       "Mumbai",
		State:      "MH",
		PostalCode: postalCode,
	}
}

// sessionAtPayment adds productA to u1's cart and walks a session to Payment.
func (f *fixture) sessionAtPayment(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.cart(t, "u1").Add(ctx, productA, 1, "M", "black"))

	s, err := f.manager.Begin(ctx, "u1")
	require.NoError(t, err)
	_, ok, err := s.SetAddress(ctx, fullAddress("400001"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.ProceedToPayment(ctx))
	return s
}

type blockingProcessor struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingProcessor() *blockingProcessor {
	return &blockingProcessor{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *blockingProcessor) Charge(ctx context.Context, _ string, _ int64, d domain.PaymentDetails) (domain.PaymentStatus, error) {
	p.calls.Add(1)
	p.once.Do(func() { close(p.started) })
	select {
	case <-p.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return SimulatedProcessor{}.Charge(ctx, "", 0, d)
}

type failingProcessor struct{}

func (failingProcessor) Charge(context.Context, string, int64, domain.PaymentDetails) (domain.PaymentStatus, error) {
	return "", errors.New("gateway timeout")
}
