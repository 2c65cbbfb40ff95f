// Package cache provides the read-through cache that provider clients use for idempotent
// upstream lookups. Backends register themselves by name (memory, redis, none) and are
// constructed explicitly and injected into the client that owns them; there is no
// process-wide cache instance.
//
// Values are stored as JSON bytes so the same GetOrCompute helper works against every
// backend, including ones that live outside the process.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value stored under key. Expired or absent entries report ok=false.
	Get(ctx context.Context, key string) (value []byte, ok bool)
	// Set stores value under key. A ttl <= 0 stores the value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes key if present.
	Delete(ctx context.Context, key string)
	// Len returns the number of stored entries, or -1 when unknown.
	Len(ctx context.Context) int64
}

// Settings holds the constructor configuration shared by all backends.
// Backends ignore the fields that do not apply to them.
type Settings struct {
	// Size bounds the number of entries held by in-process backends.
	Size int

	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
}
