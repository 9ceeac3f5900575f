package handlers

import (
	"mime/multipart"
	"net/http"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// ImageStore persists uploaded business images.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(name string) error
}

// HandlerConfig holds request-level switches.
type HandlerConfig struct {
	// StrictConflictStatus answers Conflict errors with 409 instead of 500.
	StrictConflictStatus bool
	AllowAdminSignup     bool
}

type Handler struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Comments   *service.CommentService
	Businesses *service.BusinessService
	Audit      *service.AuditService
	Images     ImageStore
	cfg        HandlerConfig
}

func NewHandler(h Handler, cfg HandlerConfig) *Handler {
	h.cfg = cfg
	return &h
}

// getUserID reads the id the JWT middleware stored.
func getUserID(c *gin.Context) (string, bool) {
	id := c.GetString("user_id")
	return id, id != ""
}

func requireUser(c *gin.Context) (string, bool) {
	id, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "No token provided."})
	}
	return id, ok
}

func (h *Handler) statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindConflict:
		if h.cfg.StrictConflictStatus {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage hides internal failures behind fallback.
func clientMessage(err error, fallback string) string {
	if domain.KindOf(err) == domain.KindInternal {
		return fallback
	}
	return err.Error()
}

// respondError maps err to one status and message. Unclassified errors are
// logged and answered with fallback.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if domain.KindOf(err) == domain.KindInternal {
		logger.WithContext(c.Request.Context()).Error(fallback, "error", err, "path", c.FullPath())
	}
	c.JSON(h.statusFor(err), gin.H{"error": clientMessage(err, fallback)})
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
