package checkout

import (
	"context"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/domain"
)

// PaymentProcessor charges a validated payment selection.
type PaymentProcessor interface {
	Charge(ctx context.Context, checkoutID string, amount int64, details domain.PaymentDetails) (domain.PaymentStatus, error)
}

// SimulatedProcessor stands in for a payment gateway. It waits Delay, then
// reports cash on delivery as pending and every other method as paid.
type SimulatedProcessor struct {
	Delay time.Duration
}

func (p SimulatedProcessor) Charge(ctx context.Context, _ string, _ int64, details domain.PaymentDetails) (domain.PaymentStatus, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if details.Method == domain.PaymentCOD {
		return domain.PaymentStatusPending, nil
	}
	return domain.PaymentStatusPaid, nil
}
