package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/cart"
	"github.com/blackandwhiteonline/storefront/internal/coupon"
	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/blackandwhiteonline/storefront/internal/orders"
	"github.com/blackandwhiteonline/storefront/internal/pricing"
	"github.com/blackandwhiteonline/storefront/internal/shipping"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/blackandwhiteonline/storefront/internal/checkout"

type Deps struct {
	Carts     *cart.Service
	Orders    *orders.Service
	Validator *coupon.Validator
	Estimator *shipping.Estimator
	Pricing   *pricing.Engine
	IDs       *orders.IDGenerator
	Processor PaymentProcessor
	Sink      notify.Sink
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Manager owns the live checkout sessions and the cart-page coupon of each
// shopper. A session is held from Begin until it is confirmed or abandoned.
type Manager struct {
	carts     *cart.Service
	orders    *orders.Service
	validator *coupon.Validator
	env       *env

	m        sync.Mutex
	sessions map[string]*Session
	holders  map[string]*coupon.Holder
}

// NewManager must be created before the cart service opens any store, so
// every store gets its coupon re-validation hook.
func NewManager(d Deps) *Manager {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Sink == nil {
		d.Sink = notify.Discard
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.IDs == nil {
		d.IDs = orders.NewIDGenerator(d.Clock)
	}
	if d.Processor == nil {
		d.Processor = SimulatedProcessor{}
	}

	m := &Manager{
		carts:     d.Carts,
		orders:    d.Orders,
		validator: d.Validator,
		env: &env{
			estimator: d.Estimator,
			pricing:   d.Pricing,
			ids:       d.IDs,
			processor: d.Processor,
			sink:      d.Sink,
			logger:    d.Logger,
			tracer:    otel.Tracer(tracerName),
			now:       d.Clock,
		},
		sessions: make(map[string]*Session),
		holders:  make(map[string]*coupon.Holder),
	}

	d.Carts.OnOpen(func(shopperID string, st *cart.Store) {
		h := m.CartCoupon(shopperID)
		st.OnChange(func(ctx context.Context, subtotal int64) {
			h.Revalidate(ctx, subtotal)
		})
	})
	return m
}

// CartCoupon is the coupon slot shown on the shopper's cart page.
func (m *Manager) CartCoupon(shopperID string) *coupon.Holder {
	m.m.Lock()
	defer m.m.Unlock()
	h, ok := m.holders[shopperID]
	if !ok {
		h = coupon.NewHolder(m.validator, m.env.sink, shopperID)
		m.holders[shopperID] = h
	}
	return h
}

// Begin starts a session over a copy of the shopper's cart. The cart-page
// coupon carries over if it qualifies for the snapshot.
func (m *Manager) Begin(ctx context.Context, shopperID string) (*Session, error) {
	store, err := m.carts.Cart(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart: %w", err)
	}

	items := store.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	cartCoupon := m.CartCoupon(shopperID)
	s := &Session{
		id:         uuid.NewString(),
		shopperID:  shopperID,
		createdAt:  m.env.now().UTC(),
		items:      items,
		subtotal:   domain.SumSubtotal(items),
		coupon:     coupon.NewHolder(m.validator, m.env.sink, shopperID),
		stage:      domain.StageShipping,
		cart:       store,
		cartCoupon: cartCoupon,
		orders:     m.orders.For(shopperID),
		env:        m.env,
	}
	s.release = func() { m.forget(s.id) }
	if cp, ok := cartCoupon.Applied(); ok {
		s.coupon.Adopt(ctx, cp, s.subtotal)
	}

	m.m.Lock()
	m.sessions[s.id] = s
	m.m.Unlock()

	m.env.logger.InfoContext(ctx, "checkout started",
		"checkout_id", s.id, "shopper_id", shopperID, "lines", len(items), "subtotal", s.subtotal)
	return s, nil
}

// Session looks a session up for its owner.
func (m *Manager) Session(shopperID, id string) (*Session, error) {
	m.m.Lock()
	defer m.m.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.shopperID != shopperID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Abandon forgets a session. Nothing the session did is persisted before
// Confirm, so the cart and order history are untouched. A session that is
// confirming cannot be abandoned; a confirmed one is left as is.
func (m *Manager) Abandon(ctx context.Context, shopperID, id string) error {
	s, err := m.Session(shopperID, id)
	if err != nil {
		return err
	}

	s.m.Lock()
	defer s.m.Unlock()
	if s.confirming {
		return ErrConfirmationInFlight
	}
	if s.stage == domain.StageConfirmed || s.abandoned {
		return nil
	}
	s.abandoned = true
	s.payment = nil
	m.forget(id)

	m.env.logger.InfoContext(ctx, "checkout abandoned", "checkout_id", id, "shopper_id", shopperID)
	return nil
}

// Confirm confirms the shopper's session. Once a confirmed session has been
// released, repeating the call returns the order it placed.
func (m *Manager) Confirm(ctx context.Context, shopperID, id string) (domain.Order, error) {
	s, err := m.Session(shopperID, id)
	if err == nil {
		return s.Confirm(ctx)
	}

	order, ferr := m.orders.For(shopperID).FindByCheckoutID(ctx, id)
	if errors.Is(ferr, orders.ErrOrderNotFound) {
		return domain.Order{}, err
	}
	if ferr != nil {
		return domain.Order{}, ferr
	}
	m.env.notifyDuplicate(ctx, shopperID, id, order)
	return order, nil
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.sessions)
}

func (m *Manager) forget(id string) {
	m.m.Lock()
	delete(m.sessions, id)
	m.m.Unlock()
}

// Reorder puts the lines of a past order back into the shopper's cart.
func (m *Manager) Reorder(ctx context.Context, shopperID, orderID string, lookup ProductLookup) (ReorderResult, error) {
	order, err := m.orders.For(shopperID).FindByID(ctx, orderID)
	if err != nil {
		return ReorderResult{}, err
	}
	store, err := m.carts.Cart(ctx, shopperID)
	if err != nil {
		return ReorderResult{}, fmt.Errorf("failed to open cart: %w", err)
	}
	return Reorder(ctx, order, store, lookup)
}
