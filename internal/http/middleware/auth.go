package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID  = "user_id"
	ctxIsAdmin = "is_admin"
)

type TokenResolver interface {
	ResolveToken(token string) (string, error)
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// JWT requires an Authorization header holding the token, with or without
// the "Bearer " prefix, and stores the user id under "user_id".
func JWT(auth TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No token provided."})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		userID, err := auth.ResolveToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token."})
			return
		}

		c.Set(ctxUserID, userID)
		ctx := logger.NewContext(c.Request.Context(), logger.WithContext(c.Request.Context()).With("user_id", userID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin must run after JWT. The role is read from storage on every request.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ctxUserID)
		isAdmin, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			logger.WithContext(c.Request.Context()).Error("admin check failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. Admins only."})
			return
		}
		c.Set(ctxIsAdmin, true)
		c.Next()
	}
}
