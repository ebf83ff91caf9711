// Package ratelimit implements a Redis-backed fixed-window rate limiter.
// Counters live entirely in Redis so limits hold across replicas.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/config"
)

// Lua script for atomic increment-and-check within a window.
// KEYS[1] = counter key for this caller and window
// ARGV[1] = limit
// ARGV[2] = window in seconds
const allowScript = `
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`

// RedisLimiter implements the RateLimiter port using Redis counters
type RedisLimiter struct {
	client  *redis.Client
	logger  ports.Logger
	metrics ports.Metrics
}

// New connects to Redis and verifies the connection
func New(cfg *config.RedisConfig, logger ports.Logger, metrics ports.Metrics) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis rate limiter initialized", "addr", cfg.Addr)

	return &RedisLimiter{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Allow reports whether the caller identified by key may proceed. The
// window is fixed: all requests sharing the same window bucket count
// against one counter.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucket := time.Now().Unix() / int64(window.Seconds())
	counterKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	result, err := l.client.Eval(ctx, allowScript, []string{counterKey},
		limit, int64(window.Seconds())).Result()
	if err != nil {
		l.metrics.IncrementCounter("ratelimit.errors", nil)
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected rate limit script result: %v", result)
	}

	if allowed != 1 {
		l.metrics.IncrementCounter("ratelimit.rejected", nil)
		return false, nil
	}
	return true, nil
}

// Close releases the Redis connection
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
