package cache

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process KeyValueCache.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	versions map[string]int64
	now      func() time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

var _ interfaces.KeyValueCache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries:  map[string]memoryEntry{},
		versions: map[string]int64{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) BumpVersion(_ context.Context, scope string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[scope]++
	return c.versions[scope], nil
}

func (c *MemoryCache) Version(_ context.Context, scope string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[scope], nil
}
