package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter implements Limiter against a shared Redis instance, the
// multi-instance counterpart to KeyedLimiter's single-process token
// buckets (spec.md §4.10: "rate-limit state must be shared across
// instances in a horizontally scaled deployment"). It uses the
// fixed-window INCR+EXPIRE counter idiom rather than a token bucket,
// since Redis has no atomic leaky-bucket primitive without a Lua script.
type RedisLimiter struct {
	client    *redis.Client
	perWindow int64
	window    time.Duration
	prefix    string
}

// NewRedisLimiter builds a limiter allowing up to perWindow requests per
// window, per distinct key, backed by client.
func NewRedisLimiter(client *redis.Client, perWindow int, window time.Duration, prefix string) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if perWindow <= 0 {
		perWindow = 1
	}
	return &RedisLimiter{client: client, perWindow: int64(perWindow), window: window, prefix: prefix}
}

// Allow implements Limiter. A Redis error panics; callers that want
// fail-open semantics wrap this in FailOpen, which recovers the panic and
// allows the request.
func (r *RedisLimiter) Allow(key string) (bool, time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	redisKey := r.prefix + ":" + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		panic(err) // caught and converted to allow by FailOpen
	}
	if count == 1 {
		r.client.Expire(ctx, redisKey, r.window)
	}
	if count > r.perWindow {
		ttl, err := r.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = r.window
		}
		return false, ttl
	}
	return true, 0
}

// Cleanup is a no-op; Redis keys expire on their own via Expire above.
func (r *RedisLimiter) Cleanup() {}
