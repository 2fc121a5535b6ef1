package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"agency/pkg/platform/sentinel"
)

var redisGetDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "agency_consent_redis_get_duration_ms",
	Help:    "Latency of consent reads from Redis in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// RedisKV stores consent documents as plain Redis strings. The client
// lifecycle is managed by the caller.
type RedisKV struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisKV.
type RedisOption func(*RedisKV)

// WithKeyPrefix namespaces every key, e.g. per environment.
func WithKeyPrefix(prefix string) RedisOption {
	return func(kv *RedisKV) {
		kv.prefix = prefix
	}
}

// NewRedis constructs a Redis-backed KV.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *RedisKV {
	kv := &RedisKV{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(kv)
		}
	}
	return kv
}

func (kv *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() {
		redisGetDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	value, err := kv.client.Get(ctx, kv.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set uses SET with expiry; a zero TTL persists the key.
func (kv *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := kv.client.Set(ctx, kv.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (kv *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	pipe := kv.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, kv.prefix+key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
