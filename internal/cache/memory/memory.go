// Package memory implements an in-process cache backend on top of a bounded LRU.
// Expiry is evaluated on read; expired entries are dropped lazily.
package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/project-directory/directory/internal/cache"
)

// DefaultSize is used when the configured size is not positive.
const DefaultSize = 4096

func init() {
	cache.Register("memory", func(_ context.Context, settings cache.Settings) (cache.Cache, error) {
		return New(settings.Size)
	})
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a memory cache with an LRU eviction policy and per-entry TTL.
type Cache struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

var _ cache.Cache = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source used to evaluate expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New returns a Cache holding at most size entries.
func New(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}

	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}

	c := &Cache{entries: entries, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get implements cache.Cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set implements cache.Cache.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, e)
}

// Delete implements cache.Cache.
func (c *Cache) Delete(_ context.Context, key string) {
	c.entries.Remove(key)
}

// Len implements cache.Cache. Expired entries that have not been read yet are counted.
func (c *Cache) Len(_ context.Context) int64 {
	return int64(c.entries.Len())
}
