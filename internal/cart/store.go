package cart

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

// ChangeHook runs after every successful mutation with the new subtotal.
type ChangeHook func(ctx context.Context, subtotal int64)

// Store owns one shopper's line items. Every mutation writes the complete
// item collection to storage before it becomes visible.
type Store struct {
	m         sync.RWMutex
	storage   storage.Storage
	shopperID string
	key       string
	items     []domain.LineItem
	hooks     []ChangeHook
	logger    *slog.Logger
}

// Open restores the shopper's cart. An unreadable snapshot is discarded and
// the cart starts empty; only a storage failure is returned.
func Open(ctx context.Context, st storage.Storage, shopperID string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage:   st,
		shopperID: shopperID,
		key:       storage.CartKey(shopperID),
		logger:    logger,
	}

	data, err := st.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	items, err := decodeItems(data)
	if err != nil {
		logger.WarnContext(ctx, "discarding unreadable cart",
			"shopper_id", shopperID,
			"key", s.key,
			"error", fmt.Errorf("%w: %w", domain.ErrPersistenceRead, err))
		return s, nil
	}
	s.items = items
	return s, nil
}

func decodeItems(data []byte) ([]domain.LineItem, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 || item.UnitPrice < 0 {
			return nil, fmt.Errorf("malformed line item %q", item.Key())
		}
		if _, dup := seen[item.Key()]; dup {
			return nil, fmt.Errorf("duplicate line item %q", item.Key())
		}
		seen[item.Key()] = struct{}{}
	}
	return items, nil
}

func (s *Store) ShopperID() string {
	return s.shopperID
}

// OnChange registers a hook invoked after each successful mutation.
func (s *Store) OnChange(hook ChangeHook) {
	s.m.Lock()
	defer s.m.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Add merges quantity into the line with the same composite key or appends a
// new line.
func (s *Store) Add(ctx context.Context, product domain.ProductRef, quantity int, size, color string) error {
	if quantity < 1 {
		return domain.NewValidationError("quantity")
	}

	key := domain.CompositeKey(product.ID, size, color)
	return s.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		for i := range items {
			if items[i].Key() == key {
				items[i].Quantity += quantity
				return items
			}
		}
		return append(items, domain.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
			Quantity:  quantity,
			Size:      size,
			Color:     color,
		})
	})
}

// Remove deletes the line; a missing key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, ok := s.Get(key); !ok {
		return nil
	}
	return s.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		return removeKey(items, key)
	})
}

// SetQuantity overwrites the quantity; zero or less removes the line.
func (s *Store) SetQuantity(ctx context.Context, key string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, key)
	}
	if _, ok := s.Get(key); !ok {
		return nil
	}
	return s.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		for i := range items {
			if items[i].Key() == key {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func([]domain.LineItem) []domain.LineItem {
		return nil
	})
}

func (s *Store) Subtotal() int64 {
	s.m.RLock()
	defer s.m.RUnlock()
	return domain.SumSubtotal(s.items)
}

// ItemCount is the sum of quantities, not the number of lines.
func (s *Store) ItemCount() int {
	s.m.RLock()
	defer s.m.RUnlock()
	var n int
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Items returns a copy in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.m.RLock()
	defer s.m.RUnlock()
	return domain.CopyItems(s.items)
}

func (s *Store) Get(key string) (domain.LineItem, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	for _, item := range s.items {
		if item.Key() == key {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

// mutate applies fn to a copy, persists the result and only then swaps it in.
// Hooks run after the lock is released.
func (s *Store) mutate(ctx context.Context, fn func([]domain.LineItem) []domain.LineItem) error {
	s.m.Lock()
	next := fn(domain.CopyItems(s.items))
	if err := s.persist(ctx, next); err != nil {
		s.m.Unlock()
		return err
	}
	s.items = next
	subtotal := domain.SumSubtotal(next)
	hooks := make([]ChangeHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.m.Unlock()

	for _, hook := range hooks {
		hook(ctx, subtotal)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "cart persist failed", "shopper_id", s.shopperID, "error", err)
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func removeKey(items []domain.LineItem, key string) []domain.LineItem {
	out := items[:0]
	for _, item := range items {
		if item.Key() != key {
			out = append(out, item)
		}
	}
	return out
}
