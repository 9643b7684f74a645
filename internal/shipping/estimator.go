package shipping

import (
	"strconv"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/domain"
)

// DefaultHubCode is the courier hub every distance is measured from.
const DefaultHubCode = 110001

type tier struct {
	below int // exclusive upper bound on distance; 0 means unbounded
	days  int
	fee   int64
}

var tiers = []tier{
	{below: 1000, days: 2, fee: 50},
	{below: 2000, days: 3, fee: 100},
	{below: 3000, days: 4, fee: 150},
	{below: 0, days: 5, fee: 200},
}

type Estimator struct {
	hub int
	now func() time.Time
}

type Option func(*Estimator)

func WithHubCode(code int) Option {
	return func(e *Estimator) { e.hub = code }
}

func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{hub: DefaultHubCode, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quote evaluates code against today's date. ok is false when code is not a
// six-digit numeric destination.
func (e *Estimator) Quote(code string) (domain.ShippingQuote, bool) {
	return e.QuoteAt(code, e.now())
}

// QuoteAt is Quote with an explicit "today".
func (e *Estimator) QuoteAt(code string, today time.Time) (domain.ShippingQuote, bool) {
	dest, ok := parseCode(code)
	if !ok {
		return domain.ShippingQuote{}, false
	}

	distance := dest - e.hub
	if distance < 0 {
		distance = -distance
	}

	t := tierFor(distance)
	y, m, d := today.Date()
	eta := time.Date(y, m, d+t.days, 0, 0, 0, 0, today.Location())

	return domain.ShippingQuote{
		DestinationCode:   code,
		Charge:            t.fee,
		DeliveryDays:      t.days,
		EstimatedDelivery: eta,
	}, true
}

func tierFor(distance int) tier {
	for _, t := range tiers {
		if t.below == 0 || distance < t.below {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

func parseCode(code string) (int, bool) {
	if len(code) != 6 {
		return 0, false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, false
	}
	return n, true
}
