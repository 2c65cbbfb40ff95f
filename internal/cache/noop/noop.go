// Package noop provides a cache backend that never stores anything.
package noop

import (
	"context"
	"time"

	"github.com/project-directory/directory/internal/cache"
)

func init() {
	cache.Register("none", func(_ context.Context, _ cache.Settings) (cache.Cache, error) {
		return New(), nil
	})
}

type noopCache struct{}

// New returns a Cache that always misses.
func New() cache.Cache {
	return noopCache{}
}

// Get implements cache.Cache.
func (noopCache) Get(_ context.Context, _ string) ([]byte, bool) {
	return nil, false
}

// Set implements cache.Cache.
func (noopCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) {}

// Delete implements cache.Cache.
func (noopCache) Delete(_ context.Context, _ string) {}

// Len implements cache.Cache.
func (noopCache) Len(_ context.Context) int64 {
	return -1
}
