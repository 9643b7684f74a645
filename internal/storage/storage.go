package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Storage is a process-wide key-value store of serialized collections.
// Put always replaces the whole value, so readers never observe a partial
// collection.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func CartKey(shopperID string) string {
	return fmt.Sprintf("cart:%s", shopperID)
}

func OrdersKey(shopperID string) string {
	return fmt.Sprintf("orders:%s", shopperID)
}
