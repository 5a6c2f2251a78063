package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"task-tracker/internal/models"
	"task-tracker/internal/repository"

	"github.com/gin-gonic/gin"
)

// HeaderPersisted is set to "false" when a mutation was applied in memory but
// could not be written to the store.
const HeaderPersisted = "X-Persisted"

type mutationResponse struct {
	Task      models.Task `json:"task"`
	Persisted bool        `json:"persisted"`
}

// respondMutation writes the result of a task mutation. A persistence failure
// still answers with the success code; the body and header carry the warning.
func respondMutation(c *gin.Context, code int, task models.Task, err error) {
	if err != nil && !repository.IsPersistenceFailure(err) {
		handleTaskError(c, err)
		return
	}

	persisted := err == nil
	if !persisted {
		c.Header(HeaderPersisted, "false")
		_ = c.Error(err)
	}
	c.JSON(code, mutationResponse{Task: task, Persisted: persisted})
}

func handleTaskError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, repository.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "progress entry not found"})
	case errors.Is(err, repository.ErrIndexOutOfRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request"})
	}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
