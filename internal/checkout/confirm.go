package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/blackandwhiteonline/storefront/internal/pricing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Outcome is the settled result of an asynchronous confirmation.
type Outcome struct {
	Order domain.Order
	Err   error
}

// confirmation is what Confirm captures under the lock before charging.
type confirmation struct {
	orderID string
	payment domain.PaymentDetails
	totals  pricing.Totals
	coupon  string
	address domain.Address
	quote   domain.ShippingQuote
}

// Confirm moves Payment -> Confirmed: it charges the payment, prices the
// frozen snapshot, appends the Order and clears the cart. The session is then
// released from its Manager and its payment details are dropped. Confirming
// an already confirmed session returns the existing order. A second call
// while one is running gets ErrConfirmationInFlight.
func (s *Session) Confirm(ctx context.Context) (domain.Order, error) {
	ctx, span := s.env.tracer.Start(ctx, "checkout.Confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("checkout.id", s.id),
		attribute.String("shopper.id", s.shopperID),
	)

	c, existing, err := s.beginConfirm(ctx)
	if existing != nil {
		span.SetAttributes(attribute.Bool("checkout.duplicate", true))
		s.env.notifyDuplicate(ctx, s.shopperID, s.id, *existing)
		return *existing, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Order{}, err
	}

	order, err := s.complete(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.m.Lock()
		s.confirming = false
		s.m.Unlock()
		return domain.Order{}, err
	}

	s.m.Lock()
	s.order = &order
	s.stage = domain.StageConfirmed
	s.confirming = false
	s.payment = nil
	release := s.release
	s.m.Unlock()
	if release != nil {
		release()
	}

	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int64("order.total", order.Total))
	s.env.logger.InfoContext(ctx, "order placed",
		"checkout_id", s.id, "order_id", order.ID, "shopper_id", s.shopperID, "total", order.Total)
	s.env.sink.Notify(ctx, notify.Notice{
		Kind:       notify.KindOrderPlaced,
		Message:    fmt.Sprintf("Order %s placed", order.ID),
		ShopperID:  s.shopperID,
		CheckoutID: s.id,
		OrderID:    order.ID,
		CouponCode: order.CouponCode,
	})
	return order, nil
}

// ConfirmAsync runs Confirm in the background and delivers one Outcome.
func (s *Session) ConfirmAsync(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		order, err := s.Confirm(ctx)
		out <- Outcome{Order: order, Err: err}
		close(out)
	}()
	return out
}

// beginConfirm validates the transition and marks the session as confirming.
func (s *Session) beginConfirm(ctx context.Context) (confirmation, *domain.Order, error) {
	s.m.Lock()
	if s.abandoned {
		s.m.Unlock()
		return confirmation{}, nil, ErrSessionNotFound
	}
	if s.stage == domain.StageConfirmed && s.order != nil {
		o := *s.order
		s.m.Unlock()
		return confirmation{}, &o, nil
	}
	if s.confirming {
		s.m.Unlock()
		return confirmation{}, nil, ErrConfirmationInFlight
	}
	if !domain.CanTransitionTo(s.stage, domain.StageConfirmed) {
		s.m.Unlock()
		return confirmation{}, nil, domain.ErrIllegalTransition
	}

	var invalid []string
	if s.payment == nil {
		invalid = []string{"payment_method"}
	} else {
		invalid = s.payment.InvalidFields(s.env.now())
	}
	if len(invalid) > 0 {
		s.m.Unlock()
		s.notifyValidation(ctx, invalid)
		return confirmation{}, nil, domain.NewValidationError(invalid...)
	}

	s.coupon.Revalidate(ctx, s.subtotal)
	var code string
	if cp, ok := s.coupon.Applied(); ok {
		code = cp.Code
	}

	c := confirmation{
		orderID: s.env.ids.Next(),
		payment: *s.payment,
		totals: s.env.pricing.Price(notify.WithShopper(ctx, s.shopperID), s.subtotal, s.quote.Charge,
			s.coupon.Discount(s.subtotal), 0),
		coupon:  code,
		address: s.address,
		quote:   *s.quote,
	}
	s.confirming = true
	s.m.Unlock()
	return c, nil, nil
}

func (s *Session) complete(ctx context.Context, c confirmation) (domain.Order, error) {
	status, err := s.env.processor.Charge(ctx, s.id, c.totals.Total, c.payment)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	order := domain.Order{
		ID:                c.orderID,
		CheckoutID:        s.id,
		ShopperID:         s.shopperID,
		CreatedAt:         s.env.now().UTC(),
		Items:             domain.CopyItems(s.items),
		Subtotal:          c.totals.Subtotal,
		ShippingCharge:    c.totals.Shipping,
		Discount:          c.totals.Discount,
		Tax:               c.totals.Tax,
		Total:             c.totals.Total,
		CouponCode:        c.coupon,
		PaymentMethod:     c.payment.Method,
		PaymentStatus:     status,
		CardLast4:         c.payment.CardLast4(),
		ShippingAddress:   c.address,
		DeliveryDays:      c.quote.DeliveryDays,
		EstimatedDelivery: c.quote.EstimatedDelivery,
		Status:            domain.OrderStatusProcessing,
	}

	if err := s.orders.Append(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("failed to save order: %w", err)
	}

	// the order is the record from here on; a cart that fails to clear is logged only
	if s.cartCoupon != nil {
		s.cartCoupon.Remove()
	}
	if err := s.cart.Clear(ctx); err != nil {
		s.env.logger.ErrorContext(ctx, "failed to clear cart after order", "order_id", order.ID, "error", err)
	}
	return order, nil
}

// notifyDuplicate tells the shopper a repeated confirmation was answered with
// the order already placed.
func (e *env) notifyDuplicate(ctx context.Context, shopperID, checkoutID string, order domain.Order) {
	e.logger.InfoContext(ctx, "duplicate confirmation, returning existing order",
		"checkout_id", checkoutID, "order_id", order.ID)
	e.sink.Notify(ctx, notify.Notice{
		Kind:       notify.KindDuplicateConfirmation,
		Message:    fmt.Sprintf("Order %s was already placed", order.ID),
		ShopperID:  shopperID,
		CheckoutID: checkoutID,
		OrderID:    order.ID,
	})
}
