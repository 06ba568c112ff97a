// Package ratelimit implements the per-key token-bucket limiter (not a
// sliding window; RedisLimiter uses fixed windows) the
// Auth Core (spec.md §4.8) and Request Router (§4.10) both depend on. The
// limiter is injected as an interface so a store outage can never lock
// users out (§4.10: "rate-limit stores fail open if unavailable").
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is the capability the router and auth core depend on. A
// production deployment backs this with a shared store (e.g. Redis); the
// in-process KeyedLimiter below is the default implementation and is
// sufficient for a single-instance deployment.
type Limiter interface {
	// Allow reports whether the caller identified by key may proceed now,
	// and if not, how long until they may retry.
	Allow(key string) (ok bool, retryAfter time.Duration)
}

// KeyedLimiter maintains one token-bucket limiter per key (IP, user ID,
// route), matching the per-key map pattern used for API rate limiting
// elsewhere in the pack.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	window   time.Duration
}

// NewKeyedLimiter builds a limiter allowing up to perWindow requests per
// window, per distinct key.
func NewKeyedLimiter(perWindow int, window time.Duration) *KeyedLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if perWindow <= 0 {
		perWindow = 1
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perWindow) / window.Seconds()),
		burst:    perWindow,
		window:   window,
	}
}

func (k *KeyedLimiter) limiterFor(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = l
	}
	return l
}

// Allow implements Limiter.
func (k *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	l := k.limiterFor(key)
	if l.Allow() {
		return true, 0
	}
	return false, k.window
}

// Cleanup drops all tracked keys, bounding memory growth for long-running
// deployments; callers schedule this periodically.
func (k *KeyedLimiter) Cleanup() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.limiters) > 50_000 {
		k.limiters = make(map[string]*rate.Limiter)
	}
}

// NoopLimiter always allows — used as the fail-open fallback when the
// backing store (Redis, etc.) is unavailable.
type NoopLimiter struct{}

func (NoopLimiter) Allow(string) (bool, time.Duration) { return true, 0 }

// FailOpen wraps a Limiter so that any panic or nil limiter degrades to
// allowing the request, per spec.md §4.10's fail-open contract.
type FailOpen struct {
	Inner Limiter
}

func (f FailOpen) Allow(key string) (ok bool, retryAfter time.Duration) {
	if f.Inner == nil {
		return true, 0
	}
	defer func() {
		if recover() != nil {
			ok, retryAfter = true, 0
		}
	}()
	return f.Inner.Allow(key)
}
