// Package redis implements the exclusion snapshot cache on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keyPrefix = "ledger:exclusion:"

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// ExclusionCache implements storage.ExclusionCache using Redis.
type ExclusionCache struct {
	client redis.Cmdable
}

// NewExclusionCache creates a new ExclusionCache.
func NewExclusionCache(client redis.Cmdable) *ExclusionCache {
	return &ExclusionCache{client: client}
}

// Compile-time interface check.
var _ storage.ExclusionCache = (*ExclusionCache)(nil)

// Get returns the cached set. Returns ErrNotFound on miss.
func (c *ExclusionCache) Get(ctx context.Context, fingerprint string) (*domain.ExclusionSet, error) {
	data, err := c.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exclusion set: %w", err)
	}

	var reasons map[string]string
	if err := json.Unmarshal(data, &reasons); err != nil {
		return nil, fmt.Errorf("decode exclusion set: %w", err)
	}
	return domain.NewExclusionSet(reasons), nil
}

// Put stores the set for ttl. A zero ttl keeps it until evicted.
func (c *ExclusionCache) Put(ctx context.Context, fingerprint string, set *domain.ExclusionSet, ttl time.Duration) error {
	if fingerprint == "" || set == nil {
		return storage.ErrInvalidInput
	}

	data, err := json.Marshal(set.Reasons())
	if err != nil {
		return fmt.Errorf("encode exclusion set: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+fingerprint, data, ttl).Err(); err != nil {
		return fmt.Errorf("put exclusion set: %w", err)
	}
	return nil
}
