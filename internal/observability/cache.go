package observability

import (
	"context"
	"errors"

	"media-favorites/internal/core/ports"
)

// InstrumentedCache counts snapshot hits and misses. Other cache errors are not counted.
type InstrumentedCache struct {
	inner ports.Cache
}

var _ ports.Cache = (*InstrumentedCache)(nil)

func NewInstrumentedCache(inner ports.Cache) *InstrumentedCache {
	return &InstrumentedCache{inner: inner}
}

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.inner.Get(ctx, key)
	switch {
	case err == nil:
		cacheLookups.WithLabelValues("hit").Inc()
	case errors.Is(err, ports.ErrCacheMiss):
		cacheLookups.WithLabelValues("miss").Inc()
	}
	return data, err
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, data []byte) error {
	return c.inner.Set(ctx, key, data)
}

func (c *InstrumentedCache) Invalidate(ctx context.Context, key string) error {
	return c.inner.Invalidate(ctx, key)
}
