package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitRule describes a token-bucket rate limit.
type RateLimitRule struct {
	Rate  rate.Limit
	Burst int
}

// RateLimiter keeps one token bucket per principal.
type RateLimiter struct {
	mu       sync.Mutex
	rule     RateLimitRule
	limiters map[string]*rate.Limiter
}

// NewRateLimiter constructs a RateLimiter with the given rule.
func NewRateLimiter(rule RateLimitRule) *RateLimiter {
	return &RateLimiter{
		rule:     rule,
		limiters: make(map[string]*rate.Limiter),
	}
}

// RateLimit limits requests per authenticated user (falling back to client IP).
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		principal := UserIDFromContext(c)
		if principal == "" {
			principal = c.ClientIP()
		}
		allowed, retryAfter := limiter.Allow(principal)
		if allowed {
			c.Next()
			return
		}
		retryAfterSeconds := int(math.Ceil(retryAfter.Seconds()))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":        "rate_limited",
			"retryAfterMs": int64(retryAfter / time.Millisecond),
		})
	}
}

// Allow reports whether the principal may proceed, and if not, how long to wait.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	if l.rule.Rate <= 0 || l.rule.Burst <= 0 {
		return true, 0
	}
	l.mu.Lock()
	bucket, ok := l.limiters[key]
	if !ok {
		bucket = rate.NewLimiter(l.rule.Rate, l.rule.Burst)
		l.limiters[key] = bucket
	}
	l.mu.Unlock()

	reservation := bucket.Reserve()
	if !reservation.OK() {
		return false, time.Second
	}
	delay := reservation.Delay()
	if delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}
