package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackandwhiteonline/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupSQLite(t *testing.T) *SQLStore {
	store, err := Open(DialectSQLite, filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations())
	t.Cleanup(func() { store.Close() })
	return store
}

func setupPostgres(t *testing.T) (*SQLStore, func()) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := Credentials{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	store, err := Open(DialectPostgres, creds.DSN())
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations())

	cleanup := func() {
		store.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return store, cleanup
}

func exerciseStore(t *testing.T, store storage.Storage) {
	ctx := context.Background()
	key := storage.CartKey("user123")

	v, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, v)

	require.NoError(t, store.Put(ctx, key, []byte(`[{"product_id":"p1","quantity":1}]`)))
	v, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":"p1","quantity":1}]`, string(v))

	require.NoError(t, store.Put(ctx, key, []byte(`[]`)))
	v, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, key))
}

func TestSQLite_Store(t *testing.T) {
	exerciseStore(t, setupSQLite(t))
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	store := setupSQLite(t)
	assert.NoError(t, store.RunMigrations())
	assert.Equal(t, DialectSQLite, store.Dialect())
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	first, err := Open(DialectSQLite, path)
	require.NoError(t, err)
	require.NoError(t, first.RunMigrations())
	require.NoError(t, first.Put(ctx, "orders:u1", []byte(`[{"id":"ORD-1"}]`)))
	require.NoError(t, first.Close())

	second, err := Open(DialectSQLite, path)
	require.NoError(t, err)
	defer second.Close()

	v, err := second.Get(ctx, "orders:u1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"ORD-1"}]`, string(v))
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported sql dialect")
}

func TestCredentials_DSN(t *testing.T) {
	c := Credentials{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "shop"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", c.DSN())

	c.SSLMode = "require"
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=require", c.DSN())
}

func TestPostgres_Store(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()

	exerciseStore(t, store)
}
