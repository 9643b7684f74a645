package checkout

import (
	"context"
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
	"go.opentelemetry.io/otel/trace"
)

// collaborators shared by every session of a Manager
type env struct {
	estimator *shipping.Estimator
	pricing   *pricing.Engine
	ids       *orders.IDGenerator
	processor PaymentProcessor
	sink      notify.Sink
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Session carries one shopper from Shipping through Payment to Confirmed.
// It holds a copy of the cart taken at Begin; later cart edits do not reach it.
type Session struct {
	m          sync.Mutex
	id         string
	shopperID  string
	createdAt  time.Time
	items      []domain.LineItem
	subtotal   int64
	address    domain.Address
	quote      *domain.ShippingQuote
	coupon     *coupon.Holder
	payment    *domain.PaymentDetails
	stage      domain.Stage
	order      *domain.Order
	confirming bool
	abandoned  bool
	release    func() // removes the session from its Manager

	cart       *cart.Store
	cartCoupon *coupon.Holder
	orders     *orders.Repository
	env        *env
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) ShopperID() string {
	return s.shopperID
}

func (s *Session) Stage() domain.Stage {
	s.m.Lock()
	defer s.m.Unlock()
	return s.stage
}

// Items returns the frozen snapshot.
func (s *Session) Items() []domain.LineItem {
	return domain.CopyItems(s.items)
}

func (s *Session) Address() domain.Address {
	s.m.Lock()
	defer s.m.Unlock()
	return s.address
}

func (s *Session) Quote() (domain.ShippingQuote, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.quote == nil {
		return domain.ShippingQuote{}, false
	}
	return *s.quote, true
}

func (s *Session) Payment() (domain.PaymentDetails, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.payment == nil {
		return domain.PaymentDetails{}, false
	}
	return *s.payment, true
}

// Order returns the order created by Confirm, if any.
func (s *Session) Order() (domain.Order, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.order == nil {
		return domain.Order{}, false
	}
	return *s.order, true
}

// SetAddress stores the shipping fields and re-quotes from the postal code.
// A postal code the estimator rejects clears the quote.
func (s *Session) SetAddress(_ context.Context, addr domain.Address) (domain.ShippingQuote, bool, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if err := s.editable(domain.StageShipping); err != nil {
		return domain.ShippingQuote{}, false, err
	}

	s.address = addr
	q, ok := s.env.estimator.Quote(addr.PostalCode)
	if !ok {
		s.quote = nil
		return domain.ShippingQuote{}, false, nil
	}
	s.quote = &q
	return q, true, nil
}

// ApplyCoupon validates code against the snapshot subtotal.
func (s *Session) ApplyCoupon(ctx context.Context, code string) (coupon.Result, error) {
	s.m.Lock()
	err := s.editable(domain.StageShipping, domain.StagePayment)
	s.m.Unlock()
	if err != nil {
		return coupon.Result{}, err
	}
	return s.coupon.Apply(ctx, code, s.subtotal), nil
}

func (s *Session) RemoveCoupon(_ context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()
	if err := s.editable(domain.StageShipping, domain.StagePayment); err != nil {
		return err
	}
	s.coupon.Remove()
	return nil
}

// ProceedToPayment moves Shipping -> Payment once every mandatory address
// field is filled and a quote exists for the postal code.
func (s *Session) ProceedToPayment(ctx context.Context) error {
	s.m.Lock()
	if err := s.editable(domain.StageShipping); err != nil {
		s.m.Unlock()
		return err
	}

	missing := s.address.MissingFields()
	if s.quote == nil && !containsField(missing, "postal_code") {
		missing = append(missing, "postal_code")
	}
	if len(missing) == 0 {
		s.stage = domain.StagePayment
	}
	s.m.Unlock()

	if len(missing) > 0 {
		s.notifyValidation(ctx, missing)
		return domain.NewValidationError(missing...)
	}
	return nil
}

// SelectPayment records the payment choice. Fields are checked at Confirm.
func (s *Session) SelectPayment(_ context.Context, details domain.PaymentDetails) error {
	s.m.Lock()
	defer s.m.Unlock()
	if err := s.editable(domain.StagePayment); err != nil {
		return err
	}
	s.payment = &details
	return nil
}

// Back returns Payment -> Shipping, dropping the payment selection and
// keeping the address. In Shipping it does nothing.
func (s *Session) Back(_ context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()
	if err := s.editable(domain.StageShipping, domain.StagePayment); err != nil {
		return err
	}
	if s.stage == domain.StagePayment {
		s.payment = nil
		s.stage = domain.StageShipping
	}
	return nil
}

// editable fails unless the session is idle in one of the given stages.
// Callers hold s.m.
func (s *Session) editable(stages ...domain.Stage) error {
	if s.abandoned {
		return ErrSessionNotFound
	}
	if s.confirming {
		return ErrConfirmationInFlight
	}
	for _, st := range stages {
		if s.stage == st {
			return nil
		}
	}
	return domain.ErrIllegalTransition
}

func (s *Session) notifyValidation(ctx context.Context, fields []string) {
	s.env.sink.Notify(ctx, notify.Notice{
		Kind:       notify.KindValidationFailed,
		Message:    "Please complete the highlighted fields",
		ShopperID:  s.shopperID,
		CheckoutID: s.id,
		Fields:     fields,
	})
}

func containsField(fields []string, f string) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
