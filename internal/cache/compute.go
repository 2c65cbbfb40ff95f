package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/project-directory/directory/internal/telemetry"
)

// GetOrCompute returns the value cached under key when it is still fresh, and otherwise
// calls producer, stores its result for ttl and returns it.
//
// A producer error is returned unchanged and nothing is stored. Concurrent callers that miss
// on the same key each run the producer; the last write wins. A nil cache disables caching.
func GetOrCompute[T any](ctx context.Context, c Cache, key Key, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	return GetOrComputeIf(ctx, c, key, ttl, producer, nil)
}

// GetOrComputeIf is GetOrCompute with a store predicate. A freshly produced value is written
// back only when store is nil or reports true for it; otherwise it is returned uncached.
func GetOrComputeIf[T any](ctx context.Context, c Cache, key Key, ttl time.Duration, producer func(context.Context) (T, error), store func(T) bool) (T, error) {
	k := key.String()

	if c != nil {
		if raw, ok := c.Get(ctx, k); ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				telemetry.ProviderCacheRequestsTotal.WithLabelValues(key.Kind, "hit").Inc()
				return cached, nil
			}
			slog.Debug("evicting undecodable cache entry", "key", k)
			c.Delete(ctx, k)
		}
		telemetry.ProviderCacheRequestsTotal.WithLabelValues(key.Kind, "miss").Inc()
	}

	value, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if c == nil || (store != nil && !store(value)) {
		return value, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache: value not serializable, skipping store", "key", k, "error", err)
		return value, nil
	}
	c.Set(ctx, k, raw, ttl)

	return value, nil
}
