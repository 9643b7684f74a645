package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetMissing(t *testing.T) {
	s := NewMemory()
	v, err := s.Get(context.Background(), CartKey("nobody"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, v)
}

func TestMemory_PutGetDelete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte(`[1,2]`)))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(v))

	require.NoError(t, s.Put(ctx, "k", []byte(`[3]`)))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[3]`, string(v))
	assert.ElementsMatch(t, []string{"k"}, s.Keys())

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing key is not an error
	assert.NoError(t, s.Delete(ctx, "k"))
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", buf))
	buf[0] = 'x'

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))

	v[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cart:u1", CartKey("u1"))
	assert.Equal(t, "orders:u1", OrdersKey("u1"))
}
