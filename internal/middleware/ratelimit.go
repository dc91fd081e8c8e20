package middleware

import (
	"net/http"
	"sync"
	"time"

	"cutordie_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP. Buckets refill over an
// hour, matching the old per-hour request cap on the public API.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*ipBucket
	maxPerHour int
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(maxPerHour int) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*ipBucket),
		maxPerHour: maxPerHour,
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[ip]
	if !ok {
		bucket = &ipBucket{
			limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(rl.maxPerHour)), rl.maxPerHour),
		}
		rl.buckets[ip] = bucket
	}
	bucket.lastSeen = time.Now()
	return bucket.limiter.Allow()
}

// evictLoop drops buckets idle for over two hours so the map does not
// grow without bound.
func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-2 * time.Hour)
		rl.mu.Lock()
		for ip, bucket := range rl.buckets {
			if bucket.lastSeen.Before(cutoff) {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			apperrors.HandleError(c, apperrors.New(
				apperrors.CodeInvalidOperation,
				"ratelimit",
				"Too many requests from this IP, please try again in an hour!",
				http.StatusTooManyRequests,
			))
			c.Abort()
			return
		}
		c.Next()
	}
}
