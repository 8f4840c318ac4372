package ratelimiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the counter for the current window and starts
// its expiry on the first hit. It returns the count and the remaining TTL.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return { count, redis.call('PTTL', KEYS[1]) }
`)

// RedisFixedWindowLimiter shares counters between API replicas.
type RedisFixedWindowLimiter struct {
	rdb      *redis.Client
	limit    int
	window   time.Duration
	prefix   string
	fallback Limiter
}

// NewRedisFixedWindowLimiter uses fallback whenever Redis cannot answer.
func NewRedisFixedWindowLimiter(rdb *redis.Client, limit int, frame time.Duration, fallback Limiter) *RedisFixedWindowLimiter {
	return &RedisFixedWindowLimiter{rdb: rdb, limit: limit, window: frame, prefix: "ratelimit", fallback: fallback}
}

func (rl *RedisFixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	vals, err := fixedWindowScript.Run(ctx, rl.rdb, []string{rl.prefix + ":" + key}, rl.window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) != 2 {
		return rl.fallback.Allow(ctx, key)
	}
	if vals[0] <= int64(rl.limit) {
		return true, 0
	}
	retry := time.Duration(vals[1]) * time.Millisecond
	if retry <= 0 {
		retry = rl.window
	}
	return false, retry
}

// New picks the Redis limiter when a client is available.
func New(cfg Config, rdb *redis.Client) Limiter {
	mem := NewFixedWindowLimiter(cfg.RequestsPerTimeFrame, cfg.TimeFrame)
	if rdb == nil {
		return mem
	}
	return NewRedisFixedWindowLimiter(rdb, cfg.RequestsPerTimeFrame, cfg.TimeFrame, mem)
}
