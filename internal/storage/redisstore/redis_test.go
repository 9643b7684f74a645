package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blackandwhiteonline/storefront/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore over it
func setupTestRedis(t *testing.T, prefix string, ttl time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, prefix, ttl)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "", 0)
	defer cleanup()

	key := storage.CartKey("user123")
	require.NoError(t, mr.Set(key, `[{"product_id":"p1"}]`))

	v, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":"p1"}]`, string(v))
}

func TestGet_Missing(t *testing.T) {
	store, _, cleanup := setupTestRedis(t, "", 0)
	defer cleanup()

	v, err := store.Get(context.Background(), "cart:nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, v)
}

func TestGet_RedisDown(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "", 0)
	defer cleanup()

	mr.Close()
	_, err := store.Get(context.Background(), "cart:x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestPut_WithPrefixAndTTL(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "storefront", time.Hour)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "orders:u1", []byte(`[]`)))

	raw, err := mr.Get("storefront:orders:u1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.Equal(t, time.Hour, mr.TTL("storefront:orders:u1"))

	v, err := store.Get(ctx, "orders:u1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))
}

func TestPut_Overwrites(t *testing.T) {
	store, _, cleanup := setupTestRedis(t, "", 0)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "k", []byte("one")))
	require.NoError(t, store.Put(ctx, "k", []byte("two")))

	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))
}

func TestDelete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "", 0)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	// missing key
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestKey_TrailingColonInPrefix(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "storefront:", 0)
	defer cleanup()

	require.NoError(t, store.Put(context.Background(), "cart:u1", []byte(`[]`)))

	assert.True(t, mr.Exists("storefront:cart:u1"))
	assert.False(t, mr.Exists("storefront::cart:u1"))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := Connect(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
