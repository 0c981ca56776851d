package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a rate limiting middleware for Gin keyed by client IP
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !limiter.Allow(key) {
			resetTime := limiter.GetResetTime(key)

			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))
			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded. Try again later.",
				"reset_time": resetTime.Format(time.RFC3339),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(key)))

		c.Next()
	}
}
