package middleware

import (
	"net/http"
	"sync"
	"time"

	"bubble/config"

	"github.com/gin-gonic/gin"
)

// RateLimiter tracks request timestamps per caller inside a sliding window.
// State lives in process memory; a restart resets every counter.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(cfg *config.ServerConfig) *RateLimiter {
	r := &RateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  cfg.RateLimit,
		window: cfg.RateLimitWindow,
		now:    time.Now,
	}
	go r.reap()
	return r
}

// Allow records one request for key and reports whether it still fits the
// window.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.window)
	kept := r.seen[key][:0]
	for _, t := range r.seen[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= r.limit {
		r.seen[key] = kept
		return false
	}
	r.seen[key] = append(kept, r.now())
	return true
}

// reap drops callers that went quiet for a full window so the map does not
// grow without bound.
func (r *RateLimiter) reap() {
	for range time.Tick(time.Minute) {
		r.mu.Lock()
		cutoff := r.now().Add(-r.window)
		for key, times := range r.seen {
			idle := true
			for _, t := range times {
				if t.After(cutoff) {
					idle = false
					break
				}
			}
			if idle {
				delete(r.seen, key)
			}
		}
		r.mu.Unlock()
	}
}

// RateLimitByIP throttles by client address. Used in front of everything,
// including unauthenticated endpoints.
func RateLimitByIP(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow("ip:" + c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RateLimitByUser throttles per account so location pushers behind one NAT
// do not starve each other. Runs after AuthRequired; falls back to the
// client address when no user is set.
func RateLimitByUser(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "user:" + GetUserID(c)
		if key == "user:" {
			key = "ip:" + c.ClientIP()
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
