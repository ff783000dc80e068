package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("cache: entry not found")
	ErrClosed   = errors.New("cache: closed")
	ErrCodec    = errors.New("cache: failed to encode or decode value")
)

// Cache stores values of type V by key. A ttl <= 0 means the entry does not expire.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
