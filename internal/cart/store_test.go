package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/blackandwhiteonline/storefront/internal/domain"
	"github.com/blackandwhiteonline/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	m       sync.RWMutex
	data    map[string][]byte
	getErr  error
	putErr  error
	putHits int
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: make(map[string][]byte)}
}

func (m *mockStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *mockStorage) Put(_ context.Context, key string, value []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.putHits++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.data, key)
	return nil
}

var (
	shirt = domain.ProductRef{ID: "p1", Name: "Shirt", UnitPrice: 500}
	jeans = domain.ProductRef{ID: "p2", Name: "Jeans", UnitPrice: 1200}
)

func openStore(t *testing.T, st storage.Storage) *Store {
	s, err := Open(context.Background(), st, "u1", nil)
	require.NoError(t, err)
	return s
}

func TestAdd_SameVariantMerges(t *testing.T) {
	s := openStore(t, newMockStorage())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, shirt, 2, "M", "black"))
	require.NoError(t, s.Add(ctx, shirt, 3, "M", "black"))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "p1|M|black", items[0].Key())
}

func TestAdd_DifferentVariantsAreDistinctLines(t *testing.T) {
	s := openStore(t, newMockStorage())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, shirt, 1, "M", "black"))
	require.NoError(t, s.Add(ctx, shirt, 1, "L", "black"))
	require.NoError(t, s.Add(ctx, shirt, 1, "M", "white"))

	assert.Len(t, s.Items(), 3)
	assert.Equal(t, 3, s.ItemCount())
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	s := openStore(t, newMockStorage())

	for _, q := range []int{0, -1} {
		err := s.Add(context.Background(), shirt, q, "M", "black")
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, []string{"quantity"}, domain.ValidationFields(err))
	}
	assert.Empty(t, s.Items())
}

func TestRemove_MissingKeyIsNoop(t *testing.T) {
	st := newMockStorage()
	s := openStore(t, st)

	require.NoError(t, s.Remove(context.Background(), "nope||"))
	assert.Equal(t, 0, st.putHits)
}

func TestSetQuantity(t *testing.T) {
	s := openStore(t, newMockStorage())
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, shirt, 1, "M", "black"))
	require.NoError(t, s.Add(ctx, jeans, 1, "32", "blue"))

	require.NoError(t, s.SetQuantity(ctx, "p1|M|black", 4))
	item, ok := s.Get("p1|M|black")
	require.True(t, ok)
	assert.Equal(t, 4, item.Quantity)

	require.NoError(t, s.SetQuantity(ctx, "p1|M|black", 0))
	_, ok = s.Get("p1|M|black")
	assert.False(t, ok)

	require.NoError(t, s.SetQuantity(ctx, "p2|32|blue", -3))
	assert.Empty(t, s.Items())
}

func TestSubtotalAndItemCount(t *testing.T) {
	s := openStore(t, newMockStorage())
	ctx := context.Background()
	assert.Equal(t, int64(0), s.Subtotal())

	require.NoError(t, s.Add(ctx, shirt, 2, "M", "black"))  // 1000
	require.NoError(t, s.Add(ctx, jeans, 1, "32", "blue"))  // 1200
	require.NoError(t, s.Add(ctx, shirt, 1, "L", "white"))  // 500
	require.NoError(t, s.SetQuantity(ctx, "p2|32|blue", 3)) // 3600
	require.NoError(t, s.Remove(ctx, "p1|L|white"))

	var want int64
	for _, item := range s.Items() {
		want += item.UnitPrice * int64(item.Quantity)
	}
	assert.Equal(t, want, s.Subtotal())
	assert.Equal(t, int64(4600), s.Subtotal())
	assert.Equal(t, 5, s.ItemCount())
}

func TestClear(t *testing.T) {
	st := newMockStorage()
	s := openStore(t, st)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, shirt, 2, "M", "black"))

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Items())
	assert.JSONEq(t, `[]`, string(st.data[storage.CartKey("u1")]))
}

func TestMutations_PersistWholeSnapshot(t *testing.T) {
	st := newMockStorage()
	s := openStore(t, st)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, shirt, 2, "M", "black"))
	require.NoError(t, s.Add(ctx, jeans, 1, "32", "blue"))

	restored := openStore(t, st)
	assert.Equal(t, s.Items(), restored.Items())
	assert.Equal(t, int64(2200), restored.Subtotal())
}

func TestMutations_PersistFailureLeavesStateUnchanged(t *testing.T) {
	st := newMockStorage()
	s := openStore(t, st)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, shirt, 1, "M", "black"))

	st.putErr = errors.New("disk full")
	err := s.Add(ctx, shirt, 1, "M", "black")
	require.Error(t, err)

	item, _ := s.Get("p1|M|black")
	assert.Equal(t, 1, item.Quantity)
}

func TestOpen_CorruptSnapshotResetsToEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":      `{{{`,
		"wrong shape":   `{"items":1}`,
		"zero quantity": `[{"product_id":"p1","quantity":0}]`,
		"duplicate key": `[{"product_id":"p1","quantity":1},{"product_id":"p1","quantity":2}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			st := newMockStorage()
			st.data[storage.CartKey("u1")] = []byte(raw)

			s, err := Open(context.Background(), st, "u1", nil)
			require.NoError(t, err)
			assert.Empty(t, s.Items())

			// the next write replaces the corrupt value
			require.NoError(t, s.Add(context.Background(), shirt, 1, "M", "black"))
			assert.Len(t, openStore(t, st).Items(), 1)
		})
	}
}

func TestOpen_StorageErrorIsReturned(t *testing.T) {
	st := newMockStorage()
	st.getErr = errors.New("connection refused")

	_, err := Open(context.Background(), st, "u1", nil)
	assert.ErrorContains(t, err, "connection refused")
}

func TestOnChange_ReceivesNewSubtotal(t *testing.T) {
	s := openStore(t, newMockStorage())
	ctx := context.Background()

	var seen []int64
	s.OnChange(func(_ context.Context, subtotal int64) {
		seen = append(seen, subtotal)
		// hooks may read the store
		assert.Equal(t, subtotal, s.Subtotal())
	})

	require.NoError(t, s.Add(ctx, jeans, 1, "32", "blue"))
	require.NoError(t, s.Add(ctx, shirt, 1, "M", "black"))
	require.NoError(t, s.Remove(ctx, "p2|32|blue"))
	require.NoError(t, s.Remove(ctx, "p2|32|blue")) // no-op, no hook
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []int64{1200, 1700, 500, 0}, seen)
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := openStore(t, newMockStorage())
	require.NoError(t, s.Add(context.Background(), shirt, 1, "M", "black"))

	items := s.Items()
	items[0].Quantity = 50

	item, _ := s.Get("p1|M|black")
	assert.Equal(t, 1, item.Quantity)
}
