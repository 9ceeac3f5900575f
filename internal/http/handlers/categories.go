package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListCategories(c *gin.Context) {
	cs, err := h.Categories.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to retrieve categories")
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) GetCategory(c *gin.Context) {
	cat, err := h.Categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to retrieve category")
		return
	}
	c.JSON(http.StatusOK, cat)
}

// TasksByCategory lists the requester's own tasks in the category.
func (h *Handler) TasksByCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	tasks, err := h.Tasks.TasksByCategory(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	cat, err := h.Categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	cat, err := h.Categories.Update(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.respondError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	userID, _ := getUserID(c)
	if err := h.Categories.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondError(c, err, "Failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}
