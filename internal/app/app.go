package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/cart"
	"github.com/blackandwhiteonline/storefront/internal/catalog"
	"github.com/blackandwhiteonline/storefront/internal/checkout"
	"github.com/blackandwhiteonline/storefront/internal/config"
	"github.com/blackandwhiteonline/storefront/internal/coupon"
	"github.com/blackandwhiteonline/storefront/internal/notify"
	"github.com/blackandwhiteonline/storefront/internal/orders"
	"github.com/blackandwhiteonline/storefront/internal/pricing"
	"github.com/blackandwhiteonline/storefront/internal/shipping"
	"github.com/blackandwhiteonline/storefront/internal/storage"
	"github.com/blackandwhiteonline/storefront/pkg/circuitbreaker"
)

// App holds every long-lived component of a running storefront.
type App struct {
	Logger    *slog.Logger
	Storage   storage.Storage
	Carts     *cart.Service
	Orders    *orders.Service
	Checkout  *checkout.Manager
	Coupons   *coupon.Validator
	Estimator *shipping.Estimator
	Pricing   *pricing.Engine
	Catalog   *catalog.Memory
	Stock     *catalog.StockTable
	Notices   *notify.Recorder

	closers []func(context.Context) error
}

type Option func(*options)

type options struct {
	storage   storage.Storage
	clock     func() time.Time
	processor checkout.PaymentProcessor
	sinks     []notify.Sink
}

// WithStorage skips backend selection and uses st directly.
func WithStorage(st storage.Storage) Option {
	return func(o *options) { o.storage = st }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

func WithProcessor(p checkout.PaymentProcessor) Option {
	return func(o *options) { o.processor = p }
}

// WithSink adds an extra notice consumer next to the in-memory recorder.
func WithSink(s notify.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Logger: logger}

	catalogue := coupon.DefaultCatalog()
	if cfg.Checkout.CouponCatalogPath != "" {
		loaded, err := coupon.LoadCatalogFile(cfg.Checkout.CouponCatalogPath)
		if err != nil {
			return nil, err
		}
		catalogue = loaded
	}

	st := o.storage
	if st == nil {
		opened, closeFn, err := OpenStorage(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		st = opened
		a.closers = append(a.closers, closeFn)
	}
	a.Storage = st

	a.Notices = notify.NewRecorder()
	sinks := notify.Fanout{a.Notices}
	sinks = append(sinks, o.sinks...)
	if cfg.KafkaEnabled() {
		writer := notify.NewKafkaWriter(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		breaker := circuitbreaker.New(circuitbreaker.DefaultSettings("notify-kafka"), logger)
		publisher := notify.NewKafkaPublisher(writer, breaker, logger)
		sinks = append(sinks, publisher)
		a.closers = append(a.closers, func(context.Context) error { return publisher.Close() })
		logger.Info("publishing notices to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}

	a.Coupons = coupon.NewValidator(catalogue)
	a.Estimator = shipping.NewEstimator(
		shipping.WithHubCode(cfg.Checkout.HubCode),
		shipping.WithClock(o.clock),
	)
	a.Pricing = pricing.NewEngine(cfg.Checkout.FreeShippingThreshold, logger, pricing.WithSink(sinks))
	a.Carts = cart.NewService(st, logger)
	a.Orders = orders.NewService(st, logger)
	a.Catalog = catalog.Default()
	a.Stock = catalog.DefaultStock()

	processor := o.processor
	if processor == nil {
		processor = checkout.SimulatedProcessor{Delay: cfg.Checkout.PaymentDelay}
	}

	a.Checkout = checkout.NewManager(checkout.Deps{
		Carts:     a.Carts,
		Orders:    a.Orders,
		Validator: a.Coupons,
		Estimator: a.Estimator,
		Pricing:   a.Pricing,
		IDs:       orders.NewIDGenerator(o.clock),
		Processor: processor,
		Sink:      sinks,
		Logger:    logger,
		Clock:     o.clock,
	})

	return a, nil
}

// ResolveProduct checks a variant against the catalog and the stock table.
func (a *App) ResolveProduct(ctx context.Context, productID, size, color string) (catalog.Product, error) {
	return catalog.Resolve(ctx, a.Catalog, a.Stock, productID, size, color)
}

// Close releases backends in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("failed to close app: %w", errors.Join(errs...))
	}
	return nil
}
