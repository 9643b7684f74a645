package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Pool sizes the driver's connection pool. Zero values fall back to
// DefaultPool.
type Pool struct {
	MaxSize        uint64
	MinSize        uint64
	ConnectTimeout time.Duration
}

func DefaultPool() Pool {
	return Pool{MaxSize: 50, MinSize: 2, ConnectTimeout: 10 * time.Second}
}

func (p Pool) withDefaults() Pool {
	d := DefaultPool()
	if p.MaxSize == 0 {
		p.MaxSize = d.MaxSize
	}
	if p.ConnectTimeout <= 0 {
		p.ConnectTimeout = d.ConnectTimeout
	}
	if p.MinSize > p.MaxSize {
		p.MinSize = p.MaxSize
	}
	return p
}

func (p Pool) clientOptions(uri string) *options.ClientOptions {
	p = p.withDefaults()
	return options.Client().
		ApplyURI(uri).
		SetAppName("storefront").
		SetConnectTimeout(p.ConnectTimeout).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(p.MaxSize).
		SetMinPoolSize(p.MinSize)
}

// ConnectMongoDB dials uri, pings the deployment and returns the storefront
// database handle.
func ConnectMongoDB(ctx context.Context, uri, database string, pool Pool) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, pool.clientOptions(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB %s: %w", database, err)
	}

	return client.Database(database), nil
}
