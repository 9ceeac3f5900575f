package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UserRateLimit limits writes per user (not per IP). Requires JWT to run first.
func UserRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	mem := newMemoryLimiter(window)
	return func(c *gin.Context) {
		userID := c.GetString(ctxUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No token provided."})
			return
		}
		label := "user:" + c.FullPath()

		if redisClient != nil {
			key := "user_rl:" + userID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
			if !allowRedis(c, key, maxRequests, window, label) {
				return
			}
			c.Next()
			return
		}

		if mem.hit(userID, time.Now()) > maxRequests {
			RLBlocked.WithLabelValues(label).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		RLRequests.WithLabelValues(label).Inc()
		c.Next()
	}
}
