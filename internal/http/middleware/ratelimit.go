package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// memoryLimiter is a fixed-window counter kept in process memory.
type memoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	window  time.Duration
	sweptAt time.Time
}

func newMemoryLimiter(window time.Duration) *memoryLimiter {
	return &memoryLimiter{clients: make(map[string]*clientInfo), window: window, sweptAt: time.Now()}
}

// hit counts one request for key and returns the count within the current window.
func (l *memoryLimiter) hit(key string, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.sweptAt) > 10*l.window {
		for k, ci := range l.clients {
			if now.Sub(ci.last) > l.window {
				delete(l.clients, k)
			}
		}
		l.sweptAt = now
	}

	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.last) > l.window {
		l.clients[key] = &clientInfo{last: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// It is the fallback when Redis is not configured.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	lim := newMemoryLimiter(window)
	return func(c *gin.Context) {
		if lim.hit(c.ClientIP(), time.Now()) > maxRequests {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// RateLimit picks the Redis limiter when a client is connected and the
// in-memory one otherwise.
func RateLimit(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if redisClient != nil {
		return RedisRateLimit(name, maxRequests, window)
	}
	return SimpleRateLimit(maxRequests, window)
}
