// Package redis implements a cache backend on Redis. TTLs are delegated to Redis key expiry,
// so entries shared between several server replicas expire consistently.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/project-directory/directory/internal/cache"
	"github.com/redis/go-redis/v9"
)

func init() {
	cache.Register("redis", func(ctx context.Context, settings cache.Settings) (cache.Cache, error) {
		return New(ctx, Config{
			Addr:     settings.RedisAddr,
			Username: settings.RedisUsername,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		})
	})
}

// Config is the configuration for the Redis cache.
type Config struct {
	// Addr is the Redis address [host][:port].
	Addr     string
	Username string
	Password string
	DB       int
}

// Cache is a Redis cache.
type Cache struct {
	client *redis.Client
}

var _ cache.Cache = (*Cache)(nil)

// New connects to Redis and returns a Cache. The connection is verified with PING.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Client exposes the underlying client so other components (rate limiting) can share the
// connection pool.
func (r *Cache) Client() *redis.Client {
	return r.client
}

// Get implements cache.Cache. Any Redis failure is reported as a miss.
func (r *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Set implements cache.Cache.
func (r *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", "key", key, "error", err)
	}
}

// Delete implements cache.Cache.
func (r *Cache) Delete(ctx context.Context, key string) {
	r.client.Del(ctx, key)
}

// Len implements cache.Cache.
func (r *Cache) Len(ctx context.Context) int64 {
	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return -1
	}
	return n
}

// Ping reports whether Redis is reachable.
func (r *Cache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *Cache) Close() error {
	return r.client.Close()
}
