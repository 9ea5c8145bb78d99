package middleware

import (
	"sync"
	"time"

	apperrors "learnify-go/internal/errors"
	"learnify-go/internal/httpformat"
	"learnify-go/internal/monitoring"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP plus a global bucket
// sized at five times the per-client allowance. Idle buckets are dropped by
// Sweep, which the server runs as a periodic task.
type RateLimiter struct {
	mu     sync.Mutex
	items  map[string]*limiterEntry
	rps    rate.Limit
	burst  int
	ttl    time.Duration
	global *rate.Limiter
	now    func() time.Time
}

// NewRateLimiter builds a limiter; non-positive values fall back to
// 5 rps, burst 10 and a 15 minute idle TTL.
func NewRateLimiter(rps float64, burst int, idleTTL time.Duration) *RateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	return &RateLimiter{
		items:  make(map[string]*limiterEntry),
		rps:    rate.Limit(rps),
		burst:  burst,
		ttl:    idleTTL,
		global: rate.NewLimiter(rate.Limit(rps*5), burst*5),
		now:    time.Now,
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.items[key]; ok {
		e.lastSeen = now
		return e.lim
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	l.items[key] = &limiterEntry{lim: lim, lastSeen: now}
	setRateLimitKeys(len(l.items))
	return lim
}

// Allow reports whether a request from key may proceed.
func (l *RateLimiter) Allow(key string) bool {
	if !l.global.Allow() {
		return false
	}
	return l.get(key).Allow()
}

// Sweep removes buckets idle for longer than the TTL and returns how many
// were dropped.
func (l *RateLimiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for k, e := range l.items {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.items, k)
			removed++
		}
	}
	setRateLimitKeys(len(l.items))
	recordRateLimitSweep()
	return removed
}

// Len is the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Handler returns the gin middleware.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			path := c.FullPath()
			if path == "" {
				path = "unmatched"
			}
			monitoring.RateLimitRejected.WithLabelValues(path).Inc()
			c.Header("Retry-After", "1")
			httpformat.Abort(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}
