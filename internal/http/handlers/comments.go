package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Text   string `json:"text"`
	TaskID string `json:"taskId"`
}

func (h *Handler) ListComments(c *gin.Context) {
	cs, err := h.Comments.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to retrieve comments")
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) CommentsByTask(c *gin.Context) {
	cs, err := h.Comments.ListByTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to retrieve comments")
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) GetComment(c *gin.Context) {
	cm, err := h.Comments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to retrieve comment")
		return
	}
	c.JSON(http.StatusOK, cm)
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	cm, err := h.Comments.Create(c.Request.Context(), req.TaskID, req.Text)
	if err != nil {
		h.respondError(c, err, "Failed to create comment")
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	cm, err := h.Comments.Update(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.respondError(c, err, "Failed to update comment")
		return
	}
	c.JSON(http.StatusOK, cm)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.Comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}
