package handlers

import (
	"net/http"
	"strings"

	"task_manager/internal/domain"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) Register(c *gin.Context) {
	h.register(c, domain.RoleUser)
}

// RegisterAdmin is only routed when admin self-signup is enabled.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	if !h.cfg.AllowAdminSignup {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin registration is disabled"})
		return
	}
	h.register(c, domain.RoleAdmin)
}

func (h *Handler) register(c *gin.Context, role string) {
	var req domain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	user, err := h.Auth.Register(c.Request.Context(), req, role)
	if err != nil {
		h.respondError(c, err, "Failed to register")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	ctx := c.Request.Context()
	token, user, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "Failed to login")
		return
	}
	h.Audit.LogLogin(ctx, user.ID, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password was successfully changed"})
}

// VerifyToken reports whether the Authorization header carries a live token.
func (h *Handler) VerifyToken(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}
	if _, err := h.Auth.ResolveToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token is valid"})
}
