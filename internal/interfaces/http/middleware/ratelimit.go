package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// RateLimitInfo is the limiter state for one key.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitConfig holds the rate limit tunables.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	SkipPaths         []string
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig allows a sustained 10 rps with a burst of 20 per
// client IP and exempts the probe endpoints.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

// tokenBucket is one client's refillable budget.
type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// TokenBucketLimiter is an in-memory per-key token bucket.  Stale buckets
// are evicted lazily on Allow.
type TokenBucketLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*tokenBucket
	rate        float64
	burst       float64
	cleanupAge  time.Duration
	lastCleanup time.Time
}

// NewTokenBucketLimiter creates a limiter with the given sustained rate and
// burst size.
func NewTokenBucketLimiter(rps float64, burst int, cleanupAge time.Duration) *TokenBucketLimiter {
	if cleanupAge <= 0 {
		cleanupAge = 5 * time.Minute
	}
	return &TokenBucketLimiter{
		buckets:     make(map[string]*tokenBucket),
		rate:        rps,
		burst:       float64(burst),
		cleanupAge:  cleanupAge,
		lastCleanup: time.Now(),
	}
}

func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastCleanup) > l.cleanupAge {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.cleanupAge {
				delete(l.buckets, k)
			}
		}
		l.lastCleanup = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: l.burst}
		l.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.lastSeen = now

	info := RateLimitInfo{
		Limit:   int(l.burst),
		ResetAt: now.Add(time.Duration(float64(time.Second) * (l.burst - b.tokens) / l.rate)),
	}
	if b.tokens < 1 {
		info.Remaining = 0
		return false, info
	}
	b.tokens--
	info.Remaining = int(b.tokens)
	return true, info
}

// RateLimit applies the limiter keyed by client IP and sets the standard
// X-RateLimit response headers.
func RateLimit(limiter RateLimiter, cfg RateLimitConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		allowed, info := limiter.Allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

		if !allowed {
			retryAfter := time.Until(info.ResetAt).Seconds()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(int(retryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    string(errors.ErrCodeTooManyRequests),
				"message": errors.DefaultMessageForCode(errors.ErrCodeTooManyRequests),
			})
			return
		}
		c.Next()
	}
}
