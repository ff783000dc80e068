package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader reads through a Cache and fills misses with a loader function.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
	ttl   time.Duration
}

// NewLoader caches loaded values for ttl.
func NewLoader[V any](c Cache[V], ttl time.Duration) *Loader[V] {
	return &Loader[V]{cache: c, ttl: ttl}
}

// Load returns the cached value for key or calls fn once per concurrent miss.
// Errors from fn are returned and nothing is cached. Write failures to the
// cache are ignored; the fresh value is still returned.
func (l *Loader[V]) Load(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = l.cache.Set(ctx, key, v, l.ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate drops keys so the next Load recomputes them.
func (l *Loader[V]) Invalidate(ctx context.Context, keys ...string) error {
	return l.cache.Delete(ctx, keys...)
}
