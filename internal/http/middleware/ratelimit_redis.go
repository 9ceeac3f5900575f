package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// If addr is empty or the ping fails, redisClient stays nil and the limiters
// fall back to process memory.
func InitRedisRateLimiter(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory rate limiting", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	redisClient = client
	return client
}

// RedisClient returns the shared client or nil.
func RedisClient() *redis.Client { return redisClient }

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<name>:<window_seconds>:<client_ip>
func RedisRateLimit(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		key := "rl:" + name + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allowRedis(c, key, maxRequests, window, c.FullPath()) {
			return
		}
		c.Next()
	}
}

// allowRedis counts one hit for key. It aborts with 429 and returns false when
// over the limit; Redis errors fail open.
func allowRedis(c *gin.Context, key string, maxRequests int, window time.Duration, label string) bool {
	ctx := c.Request.Context()
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(label).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return false
	}
	RLRequests.WithLabelValues(label).Inc()
	return true
}
