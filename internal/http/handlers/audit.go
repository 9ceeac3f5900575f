package handlers

import (
	"net/http"
	"strconv"

	"task_manager/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListAudit handles GET /audit?userId=&category=&action=&limit=. Admin only.
func (h *Handler) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.Audit.List(c.Request.Context(), domain.AuditFilter{
		UserID:   c.Query("userId"),
		Category: c.Query("category"),
		Action:   c.Query("action"),
		Limit:    limit,
	})
	if err != nil {
		h.respondError(c, err, "Failed to retrieve audit logs")
		return
	}
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
