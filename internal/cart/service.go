package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/blackandwhiteonline/storefront/internal/storage"
	"golang.org/x/sync/singleflight"
)

// Service hands out one Store per shopper.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
	sfg     singleflight.Group // collapses concurrent first loads for one shopper

	m      sync.Mutex
	stores map[string]*Store
	onOpen []func(shopperID string, s *Store)
}

func NewService(st storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage: st,
		logger:  logger,
		stores:  make(map[string]*Store),
	}
}

// OnOpen registers fn to run once for each store the service restores.
func (s *Service) OnOpen(fn func(shopperID string, st *Store)) {
	s.m.Lock()
	defer s.m.Unlock()
	s.onOpen = append(s.onOpen, fn)
}

func (s *Service) Cart(ctx context.Context, shopperID string) (*Store, error) {
	if st, ok := s.cached(shopperID); ok {
		return st, nil
	}

	v, err, _ := s.sfg.Do(shopperID, func() (interface{}, error) {
		if st, ok := s.cached(shopperID); ok {
			return st, nil
		}

		st, err := Open(ctx, s.storage, shopperID, s.logger)
		if err != nil {
			return nil, err
		}

		s.m.Lock()
		hooks := append([]func(string, *Store){}, s.onOpen...)
		s.m.Unlock()

		for _, fn := range hooks {
			fn(shopperID, st)
		}

		s.m.Lock()
		s.stores[shopperID] = st
		s.m.Unlock()
		return st, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Store), nil
}

// Forget drops the in-memory handle; the persisted cart is untouched.
func (s *Service) Forget(shopperID string) {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.stores, shopperID)
}

func (s *Service) cached(shopperID string) (*Store, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	st, ok := s.stores[shopperID]
	return st, ok
}
