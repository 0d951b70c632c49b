// Package redisprovider implements a remote.Provider backed by Redis,
// storing entry blobs as plain string values with no expiry. Eviction is
// local-store-driven, not remote-TTL-driven, since a stale remote entry is
// harmless given its key is content-addressed. It registers itself for
// the "redis" and "rediss" schemes.
package redisprovider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buildcache/buildcache/pkg/remote"
)

// keyPrefix namespaces entry keys within the shared Redis keyspace.
const keyPrefix = "buildcache:entry:"

func init() {
	remote.Register("redis", open)
	remote.Register("rediss", open)
}

func open(parsed *url.URL, timeout time.Duration) (remote.Provider, error) {
	options, err := redis.ParseURL(parsed.String())
	if err != nil {
		return nil, fmt.Errorf("unable to parse redis URL: %w", err)
	}
	options.DialTimeout = timeout
	options.ReadTimeout = timeout
	options.WriteTimeout = timeout

	return &Provider{client: redis.NewClient(options)}, nil
}

// Provider is a Redis-backed remote.Provider.
type Provider struct {
	client *redis.Client
}

func redisKey(key string) string {
	return keyPrefix + key
}

// Has implements remote.Provider.Has via EXISTS.
func (p *Provider) Has(ctx context.Context, key string) (bool, error) {
	count, err := p.client.Exists(ctx, redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("unable to query redis: %w", err)
	}
	return count > 0, nil
}

// Get implements remote.Provider.Get via GET.
func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := p.client.Get(ctx, redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("unable to query redis: %w", err)
	}
	return blob, true, nil
}

// Put implements remote.Provider.Put via SET with no expiry.
func (p *Provider) Put(ctx context.Context, key string, blob []byte) error {
	if err := p.client.Set(ctx, redisKey(key), blob, 0).Err(); err != nil {
		return fmt.Errorf("unable to write to redis: %w", err)
	}
	return nil
}
