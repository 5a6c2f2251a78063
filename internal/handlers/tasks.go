package handlers

import (
	"net/http"

	"task-tracker/internal/models"
	"task-tracker/internal/projections"
	"task-tracker/internal/repository"
	"task-tracker/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService      services.TaskService
	pageSize         int
	progressPageSize int
}

func NewTaskHandler(taskService services.TaskService, pageSize int) *TaskHandler {
	return &TaskHandler{taskService: taskService, pageSize: pageSize, progressPageSize: pageSize}
}

// WithProgressPageSize sets the default page size of progress listings.
func (h *TaskHandler) WithProgressPageSize(size int) *TaskHandler {
	if size > 0 {
		h.progressPageSize = size
	}
	return h
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), repository.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   models.Date(req.StartDate),
		EndDate:     models.Date(req.EndDate),
		Category:    req.Category,
		Priority:    models.Priority(req.Priority),
	})
	respondMutation(c, http.StatusCreated, task, err)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	sortBy, order := projections.ParseSort(c.Query("sortBy"), c.DefaultQuery("order", "asc"))

	page := h.taskService.ListTasks(services.ListQuery{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", h.pageSize),
		SortBy:   sortBy,
		Order:    order,
		Status:   models.Status(c.Query("status")),
		Category: c.Query("category"),
	})
	c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var patch repository.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, patch)
	respondMutation(c, http.StatusOK, task, err)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	removed, err := h.taskService.DeleteTask(c.Request.Context(), id)
	if err != nil && !repository.IsPersistenceFailure(err) {
		handleTaskError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		c.Header(HeaderPersisted, "false")
		_ = c.Error(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.SetStatus(c.Request.Context(), id, status)
	respondMutation(c, http.StatusOK, task, err)
}

func (h *TaskHandler) ToggleTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.ToggleCompleted(c.Request.Context(), id)
	respondMutation(c, http.StatusOK, task, err)
}
