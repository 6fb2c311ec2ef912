package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-caller rate limiting middleware using token buckets.
// Each caller gets a bucket that fills at rps tokens/sec up to burst tokens;
// an empty bucket means 429.
//
// The bucket key is the API key when auth is configured, otherwise the
// client IP — the API is open by default, so the limiter has to work
// without authentication.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		bucketKey := c.ClientIP()
		if key, exists := c.Get("api_key"); exists {
			bucketKey = key.(string)
		}

		mu.Lock()
		limiter, exists := limiters[bucketKey]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[bucketKey] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
