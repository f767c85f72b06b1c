// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a process-local token-bucket rate limiter. Buckets
// come from golang.org/x/time/rate and live in a go-cache store, which
// evicts buckets that were idle for longer than the configured TTL.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// HeaderClientID lets a trusted caller, such as a bot shard, identify itself
// so that shards behind one NAT get separate buckets.
const HeaderClientID = "X-Client-ID"

const maxClientIDLen = 64

// KeyFunc selects the identity used to key a rate-limit bucket.
type KeyFunc func(*gin.Context) string

// KeyByClientOrIP prefers the X-Client-ID header and falls back to the
// client IP. Keys are prefixed so the two namespaces cannot collide.
func KeyByClientOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if id := strings.TrimSpace(c.GetHeader(HeaderClientID)); id != "" && len(id) <= maxClientIDLen {
			return "client:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimiter hands out one token bucket per key. It is safe for concurrent
// use.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	keyFn   KeyFunc
	buckets *cache.Cache
	exempt  map[string]struct{}
}

// NewRateLimiter builds a limiter refilling rps tokens per second up to burst.
// A burst <= 0 is coerced to 1 and a nil keyFn defaults to KeyByClientOrIP.
// Requests whose route is listed in exempt are never limited.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc, exempt ...string) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByClientOrIP()
	}
	ex := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		ex[p] = struct{}{}
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: cache.New(10*time.Minute, time.Minute),
		exempt:  ex,
	}
}

// bucket returns the limiter for key, creating it on first use. Every hit
// pushes the bucket's expiry forward.
func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if v, ok := rl.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		rl.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	if err := rl.buckets.Add(key, lim, cache.DefaultExpiration); err != nil {
		// Lost a race with a concurrent request for the same key.
		if v, ok := rl.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Handler rejects requests over budget with 429, a Retry-After hint and the
// standard error envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := rl.exempt[c.FullPath()]; ok {
			c.Next()
			return
		}
		if rl.bucket(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
