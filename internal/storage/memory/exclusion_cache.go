package memory

import (
	"context"
	"sync"
	"time"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

type cachedSet struct {
	set       *domain.ExclusionSet
	expiresAt time.Time // zero: never
}

// ExclusionCache is an in-memory implementation of storage.ExclusionCache.
type ExclusionCache struct {
	mu   sync.Mutex
	data map[string]cachedSet
	now  func() time.Time
}

// NewExclusionCache creates a new in-memory exclusion cache.
func NewExclusionCache() *ExclusionCache {
	return &ExclusionCache{
		data: make(map[string]cachedSet),
		now:  time.Now,
	}
}

// Get returns the cached set. Returns ErrNotFound on miss or expiry.
func (c *ExclusionCache) Get(_ context.Context, fingerprint string) (*domain.ExclusionSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[fingerprint]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.data, fingerprint)
		return nil, storage.ErrNotFound
	}
	return domain.NewExclusionSet(entry.set.Reasons()), nil
}

// Put stores the set for ttl. A zero ttl keeps it until the process exits.
func (c *ExclusionCache) Put(_ context.Context, fingerprint string, set *domain.ExclusionSet, ttl time.Duration) error {
	if fingerprint == "" || set == nil {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cachedSet{set: domain.NewExclusionSet(set.Reasons())}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.data[fingerprint] = entry
	return nil
}

var _ storage.ExclusionCache = (*ExclusionCache)(nil)
