package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Constructor builds a cache backend from settings.
type Constructor func(ctx context.Context, settings Settings) (Cache, error)

var (
	registry = map[string]Constructor{}
	mtx      sync.RWMutex

	// ErrBackendNotFound is returned when no backend is registered under the requested name.
	ErrBackendNotFound = errors.New("cache backend not found")
)

// Register registers a cache backend constructor under name.
func Register(name string, fn Constructor) {
	mtx.Lock()
	defer mtx.Unlock()

	registry[name] = fn
}

// New builds the backend registered under name.
func New(ctx context.Context, name string, settings Settings) (Cache, error) {
	mtx.RLock()
	fn, ok := registry[name]
	mtx.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}

	return fn(ctx, settings)
}
