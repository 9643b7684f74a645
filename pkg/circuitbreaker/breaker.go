// Package circuitbreaker wraps sony/gobreaker for outbound calls that must
// not slow down the request path when a dependency is down.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned without calling the wrapped function while the breaker
// is open or half-open and saturated.
var ErrOpen = errors.New("circuit breaker open")

type Settings struct {
	Name string
	// consecutive failures that open the breaker
	MaxFailures uint32
	// how long the breaker stays open before probing
	OpenTimeout time.Duration
	// probes allowed while half-open
	HalfOpenRequests uint32
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:             name,
		MaxFailures:      5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

type Breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

func New(s Settings, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := s.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Breaker{cb: cb}
}

// Do runs fn through the breaker.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}
