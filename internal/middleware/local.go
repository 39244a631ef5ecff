package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LocalRateLimiter holds in-process rate limiters keyed by client.
// Used as a brute-force guard on the password-verify endpoint, in front
// of the shared-store window limiter: token refills smooth the bursts a
// fixed window would let through at window edges.
type LocalRateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.RWMutex
	rate      rate.Limit // requests per second
	burst     int        // maximum burst size
	done      chan struct{}
	closeOnce sync.Once
}

// visitor holds a rate limiter for a specific client
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter creates a new in-process rate limiter
// rps: requests per second
// burst: maximum burst size (allows short bursts above the rate)
func NewLocalRateLimiter(rps rate.Limit, burst int) *LocalRateLimiter {
	rl := &LocalRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rps,
		burst:    burst,
		done:     make(chan struct{}),
	}

	// Clean up old visitors every 5 minutes
	go rl.cleanupVisitors()

	return rl
}

// Close stops the background visitor cleanup.
func (rl *LocalRateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
	})
}

// getVisitor returns the rate limiter for a specific client, creating one if needed
func (rl *LocalRateLimiter) getVisitor(id string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[id]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[id] = &visitor{
			limiter:  limiter,
			lastSeen: time.Now(),
		}
		return limiter
	}

	// Update last seen time
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes old visitors to prevent memory leaks
func (rl *LocalRateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		for id, v := range rl.visitors {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.visitors, id)
			}
		}
		rl.mu.Unlock()
	}
}

// LimitMiddleware returns a Gin middleware that rate limits requests
func (rl *LocalRateLimiter) LimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getVisitor(ClientID(c))

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
