package handlers

import (
	"net/http"
	"strconv"

	"task_manager/internal/domain"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	domain.RegisterInput
	Role string `json:"role"`
}

// ListUsers handles GET /users?search=&page=&limit=.
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Users.List(c.Request.Context(), domain.UserQuery{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.respondError(c, err, "Failed to retrieve users")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	user, err := h.Users.Create(c.Request.Context(), req.RegisterInput, req.Role)
	if err != nil {
		h.respondError(c, err, "Failed to register")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	requesterID, ok := requireUser(c)
	if !ok {
		return
	}
	var patch domain.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badBody(c)
		return
	}
	user, err := h.Users.Update(c.Request.Context(), c.Param("id"), requesterID, patch)
	if err != nil {
		h.respondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	requesterID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		h.respondError(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
