package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blackandwhiteonline/storefront/internal/config"
	"github.com/blackandwhiteonline/storefront/internal/storage"
	"github.com/blackandwhiteonline/storefront/internal/storage/mongostore"
	"github.com/blackandwhiteonline/storefront/internal/storage/redisstore"
	"github.com/blackandwhiteonline/storefront/internal/storage/sqlstore"
)

func noopClose(context.Context) error { return nil }

// OpenStorage connects the configured backend. The returned func closes it.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Storage, func(context.Context) error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory storage")
		return storage.NewMemory(), noopClose, nil

	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return redisstore.NewRedisStore(client, cfg.RedisPrefix, cfg.RedisTTL),
			func(context.Context) error { return client.Close() }, nil

	case config.BackendMongo:
		db, err := mongostore.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase, mongostore.Pool{
			MaxSize:        cfg.MongoMaxPoolSize,
			MinSize:        cfg.MongoMinPoolSize,
			ConnectTimeout: cfg.MongoConnectTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		st := mongostore.NewMongoStore(db)
		if err := st.CreateIndexes(ctx); err != nil {
			logger.Warn("failed to create mongo indexes", "error", err)
		}
		logger.Info("connected to mongodb", "database", cfg.MongoDatabase,
			"max_pool", cfg.MongoMaxPoolSize, "min_pool", cfg.MongoMinPoolSize)
		return st, st.Close, nil

	case config.BackendSQLite, config.BackendPostgres:
		st, err := OpenSQL(cfg)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := st.RunMigrations(); err != nil {
				st.Close()
				return nil, nil, err
			}
		}
		logger.Info("connected to sql database", "dialect", st.Dialect(), "migrated", cfg.AutoMigrate)
		return st, func(context.Context) error { return st.Close() }, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.Backend)
}

// OpenSQL opens the sqlite or postgres store without migrating it.
func OpenSQL(cfg config.StorageConfig) (*sqlstore.SQLStore, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlstore.Open(sqlstore.DialectSQLite, cfg.SQLitePath)
	case config.BackendPostgres:
		return sqlstore.Open(sqlstore.DialectPostgres, PostgresDSN(cfg))
	}
	return nil, fmt.Errorf("%w: backend %q is not a sql database", config.ErrInvalidConfig, cfg.Backend)
}

// PostgresDSN returns POSTGRES_DSN when set, else a connection string built
// from the discrete POSTGRES_* settings.
func PostgresDSN(cfg config.StorageConfig) string {
	if cfg.PostgresDSN != "" {
		return cfg.PostgresDSN
	}
	return sqlstore.Credentials{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
	}.DSN()
}
