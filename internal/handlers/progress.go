package handlers

import (
	"net/http"
	"strconv"

	"task-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

type progressRequest struct {
	Date string `json:"date" binding:"required"`
	Note string `json:"note" binding:"required"`
}

func (h *TaskHandler) GetProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	page, err := h.taskService.Progress(id, queryInt(c, "page", 1), queryInt(c, "pageSize", h.progressPageSize))
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) AddProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.AddEntry(c.Request.Context(), id, models.Date(req.Date), req.Note)
	respondMutation(c, http.StatusCreated, task, err)
}

// EditProgress and DeleteProgress address entries by position. The index is
// only meaningful against the list the caller last fetched.
func (h *TaskHandler) EditProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	index, ok := paramIndex(c)
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.EditEntry(c.Request.Context(), id, index, models.Date(req.Date), req.Note)
	respondMutation(c, http.StatusOK, task, err)
}

func (h *TaskHandler) DeleteProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	index, ok := paramIndex(c)
	if !ok {
		return
	}

	task, err := h.taskService.RemoveEntry(c.Request.Context(), id, index)
	respondMutation(c, http.StatusOK, task, err)
}

func (h *TaskHandler) EditEntry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entryID, ok := paramID(c, "entryID")
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.EditEntryByID(c.Request.Context(), id, entryID, models.Date(req.Date), req.Note)
	respondMutation(c, http.StatusOK, task, err)
}

func (h *TaskHandler) DeleteEntry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entryID, ok := paramID(c, "entryID")
	if !ok {
		return
	}

	task, err := h.taskService.RemoveEntryByID(c.Request.Context(), id, entryID)
	respondMutation(c, http.StatusOK, task, err)
}

func paramIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return index, true
}
