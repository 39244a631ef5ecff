package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"linkgate/internal/ratelimit"
)

// ClientID derives the rate-limit identity for a request: first entry of
// X-Forwarded-For, else X-Real-IP. Requests with neither header share a
// single "unknown" bucket. That is a known weak point: behind a
// misconfigured proxy all anonymous traffic competes for one window.
func ClientID(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "unknown"
}

// RateLimitMiddleware returns a Gin middleware enforcing a fixed-window
// limit shared across all service instances through the cache store.
// Every response from the limited route carries X-RateLimit-* headers.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := limiter.Check(c.Request.Context(), ClientID(c))

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limiter.MaxRequests(), 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
