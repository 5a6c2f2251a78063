package handlers

import (
	"net/http"

	"task-tracker/internal/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	taskService services.TaskService
	recent      int
}

func NewStatsHandler(taskService services.TaskService, recent int) *StatsHandler {
	return &StatsHandler{taskService: taskService, recent: recent}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskService.Dashboard(queryInt(c, "recent", h.recent)))
}

func (h *StatsHandler) StatusCounts(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskService.StatusCounts())
}

func (h *StatsHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskService.TasksByCategory())
}

func (h *StatsHandler) Priorities(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskService.TasksByPriority())
}

func (h *StatsHandler) CategoryNames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.taskService.Categories()})
}
