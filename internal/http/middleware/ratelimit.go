// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter keyed per
// client, built on golang.org/x/time/rate. Idle buckets are evicted
// opportunistically. Idempotent replays flagged by IdempotencyValidator do
// not consume tokens.
//
// The limiter is process-local; it protects one server instance.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc selects the bucket a request is charged to.
type KeyFunc func(*gin.Context) string

// KeyByClientIP charges requests to the client address ("ip:<addr>").
func KeyByClientIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter, safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	skip  func(*gin.Context) bool

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
	gcEvery  uint64
}

// LimiterOption configures a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithSkip exempts requests for which fn reports true (health, metrics).
func WithSkip(fn func(*gin.Context) bool) LimiterOption {
	return func(rl *RateLimiter) { rl.skip = fn }
}

// WithIdleTTL sets how long an unused bucket is kept (default 10m).
func WithIdleTTL(d time.Duration) LimiterOption {
	return func(rl *RateLimiter) {
		if d > 0 {
			rl.ttl = d
		}
	}
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (coerced to at least 1). A nil keyFn charges by client IP.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc, opts ...LimiterOption) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByClientIP()
	}
	rl := &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
		gcEvery:  5000,
	}
	for _, o := range opts {
		o(rl)
	}
	return rl
}

// limiterFor returns the bucket for key. Eviction runs before the lookup so
// an expired bucket is replaced rather than refreshed.
func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= rl.gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// size is the number of live buckets.
func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as
// a replay that must not be limited.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limit. Rejected requests get 429 with Retry-After
// and the error envelope code "too_many_requests".
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || (rl.skip != nil && rl.skip(c)) {
			c.Next()
			return
		}

		lim := rl.limiterFor(rl.keyFn(c), time.Now())
		r := lim.Reserve()
		if r.OK() && r.Delay() == 0 {
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(r)))
		r.Cancel()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}

// retryAfterSeconds rounds the reservation delay up to whole seconds, at
// least 1. Reservations that can never be met report 1.
func retryAfterSeconds(r *rate.Reservation) int {
	if !r.OK() {
		return 1
	}
	d := r.Delay()
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
