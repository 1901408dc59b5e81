package redis

import (
	"context"
	"errors"
	"time"

	"media-favorites/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a favorites snapshot may outlive a missed invalidation.
const DefaultTTL = 10 * time.Minute

type Adapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAdapter(addr string, ttl time.Duration) *Adapter {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Adapter{client: rdb, ttl: ttl}
}

// Ensure Adapter implements ports.Cache
var _ ports.Cache = (*Adapter)(nil)

func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := a.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	return data, err
}

func (a *Adapter) Set(ctx context.Context, key string, data []byte) error {
	return a.client.Set(ctx, key, data, a.ttl).Err()
}

func (a *Adapter) Invalidate(ctx context.Context, key string) error {
	return a.client.Del(ctx, key).Err()
}

// Ping reports whether the server is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

// Noop is a Cache that always misses. It serves when no Redis address is configured.
type Noop struct{}

var _ ports.Cache = Noop{}

func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ports.ErrCacheMiss }
func (Noop) Set(context.Context, string, []byte) error   { return nil }
func (Noop) Invalidate(context.Context, string) error    { return nil }
