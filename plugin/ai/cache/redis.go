package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the redis connection configuration.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	DefaultTTL time.Duration
}

// DefaultRedisConfig returns the default redis cache configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:       "localhost:6379",
		KeyPrefix:  "satchel:ai:",
		DefaultTTL: 5 * time.Minute,
	}
}

// RedisCache is a shared ResultCache backend for multi-instance deployments.
// Redis is optional; the memory cache is the default. Backend errors are
// logged and degrade to a miss so that a redis outage costs latency, not
// availability.
type RedisCache struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "satchel:ai:"
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	slog.Info("redis result cache connected", slog.String("addr", cfg.Addr))

	return &RedisCache{
		client:     client,
		keyPrefix:  cfg.KeyPrefix,
		defaultTTL: cfg.DefaultTTL,
	}, nil
}

// Get retrieves a cached result. Expiry is enforced by redis itself via the
// TTL set on write.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("failed to get cached result", slog.String("key", key), slog.String("error", err.Error()))
		}
		cacheMisses.WithLabelValues("redis").Inc()
		return nil, false
	}

	cacheHits.WithLabelValues("redis").Inc()
	return data, true
}

// Set inserts or overwrites the entry unconditionally.
func (r *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, r.fullKey(key), data, ttl).Err(); err != nil {
		slog.Warn("failed to set cached result", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Clear deletes all keys under the cache's prefix. Keys are scanned and
// deleted in batches so large caches do not block redis.
func (r *RedisCache) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			r.client.Del(ctx, keys...)
			keys = keys[:0]
		}
	}
	if len(keys) > 0 {
		r.client.Del(ctx, keys...)
	}
	if err := iter.Err(); err != nil {
		slog.Warn("failed to scan cache keys", slog.String("error", err.Error()))
	}
}

// Close closes the redis client.
func (r *RedisCache) Close() {
	if err := r.client.Close(); err != nil {
		slog.Warn("failed to close redis client", slog.String("error", err.Error()))
	}
}

func (r *RedisCache) fullKey(key string) string {
	return r.keyPrefix + key
}

// Ensure RedisCache implements ResultCache
var _ ResultCache = (*RedisCache)(nil)
