package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/storage"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

// Repository is one shopper's append-only order history. The collection is
// stored oldest first and always rewritten whole.
type Repository struct {
	m         *sync.Mutex
	storage   storage.Storage
	shopperID string
	key       string
	logger    *slog.Logger
}

func (r *Repository) Append(ctx context.Context, order domain.Order) error {
	r.m.Lock()
	defer r.m.Unlock()

	existing, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, o := range existing {
		if o.ID == order.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.ID)
		}
	}

	order.Items = domain.CopyItems(order.Items)
	data, err := json.Marshal(append(existing, order))
	if err != nil {
		return fmt.Errorf("marshal orders failed: %w", err)
	}
	if err := r.storage.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	all, err := r.snapshot(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range all {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, ErrOrderNotFound
}

// FindByCheckoutID returns the order placed by a checkout session.
func (r *Repository) FindByCheckoutID(ctx context.Context, checkoutID string) (domain.Order, error) {
	all, err := r.snapshot(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range all {
		if checkoutID != "" && o.CheckoutID == checkoutID {
			return o, nil
		}
	}
	return domain.Order{}, ErrOrderNotFound
}

// ListAll returns every order, most recent first.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	all, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, len(all))
	for i, o := range all {
		out[len(all)-1-i] = o
	}
	return out, nil
}

// ListRecent returns at most n orders, most recent first.
func (r *Repository) ListRecent(ctx context.Context, n int) ([]domain.Order, error) {
	if n <= 0 {
		return []domain.Order{}, nil
	}
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (r *Repository) snapshot(ctx context.Context) ([]domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.load(ctx)
}

// load reads the collection. An unparseable collection reads as empty.
func (r *Repository) load(ctx context.Context) ([]domain.Order, error) {
	data, err := r.storage.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var all []domain.Order
	if err := json.Unmarshal(data, &all); err != nil {
		r.logger.WarnContext(ctx, "treating unreadable order history as empty",
			"shopper_id", r.shopperID,
			"key", r.key,
			"error", fmt.Errorf("%w: %w", domain.ErrPersistenceRead, err))
		return nil, nil
	}
	return all, nil
}

// Service hands out per-shopper repositories sharing one lock per shopper.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	m     sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(st storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage: st,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Service) For(shopperID string) *Repository {
	s.m.Lock()
	lock, ok := s.locks[shopperID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[shopperID] = lock
	}
	s.m.Unlock()

	return &Repository{
		m:         lock,
		storage:   s.storage,
		shopperID: shopperID,
		key:       storage.OrdersKey(shopperID),
		logger:    s.logger,
	}
}
