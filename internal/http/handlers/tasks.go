package handlers

import (
	"errors"
	"net/http"

	"task_manager/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListAllTasks is admin only: every root task across users.
func (h *Handler) ListAllTasks(c *gin.Context) {
	tasks, err := h.Tasks.GetAllTasks(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to retrieve tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) ListMyTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	tasks, err := h.Tasks.GetUsersTasks(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	task, err := h.Tasks.GetTaskByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in domain.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	task, err := h.Tasks.CreateTask(c.Request.Context(), in, userID)
	if err != nil {
		h.respondError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badBody(c)
		return
	}
	task, err := h.Tasks.UpdateTask(c.Request.Context(), c.Param("id"), patch, userID)
	if err != nil {
		h.respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Tasks.DeleteTask(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondError(c, err, "Failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddSubtask creates a child under :id and returns the refreshed parent.
func (h *Handler) AddSubtask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in domain.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	parent, err := h.Tasks.AddSubtask(c.Request.Context(), c.Param("id"), in, userID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent task not found"})
			return
		}
		h.respondError(c, err, "Failed to add subtask")
		return
	}
	c.JSON(http.StatusCreated, parent)
}
