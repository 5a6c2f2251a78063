package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(m *Monitor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/health", m.HealthHandler())
	router.GET("/health/ready", m.ReadinessHandler())
	router.GET("/health/live", m.LivenessHandler())
	router.GET("/metrics", m.MetricsHandler())
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewMonitor()
	router := newTestRouter(m)

	get(router, "/ok")
	get(router, "/ok")
	get(router, "/bad")

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RequestCount)
	assert.Equal(t, int64(1), snap.ErrorCount)
	assert.Equal(t, int64(0), snap.ActiveRequests)
	assert.Equal(t, int64(2), snap.StatusCodes["OK"])
	assert.Equal(t, int64(2), snap.Endpoints["GET /ok"])
}

func TestMiddlewareCountsPanickingRequest(t *testing.T) {
	m := NewMonitor()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.RecoveryWithWriter(io.Discard), m.Middleware())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := get(router, "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.RequestCount)
	assert.Equal(t, int64(0), snap.ActiveRequests)
	assert.Equal(t, int64(1), snap.ErrorCount)
	assert.Equal(t, int64(1), snap.StatusCodes["Internal Server Error"])
	assert.Equal(t, int64(1), snap.Endpoints["GET /boom"])
}

func TestHealthHandler(t *testing.T) {
	m := NewMonitor()
	router := newTestRouter(m)

	assert.Equal(t, http.StatusOK, get(router, "/health").Code)

	var failing bool
	m.RegisterHealthCheck("store", func(ctx context.Context) error {
		if failing {
			return errors.New("connection refused")
		}
		return nil
	})

	w := get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	failing = true
	w = get(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string                 `json:"status"`
		Checks map[string]HealthCheck `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["store"].Message)

	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/live").Code)
}

func TestMetricsHandlerIncludesRegisteredStats(t *testing.T) {
	m := NewMonitor()
	m.RegisterStats("storage", func() map[string]interface{} {
		return map[string]interface{}{"saves": 4}
	})
	router := newTestRouter(m)

	w := get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "application")
	assert.Contains(t, body, "system")
	assert.JSONEq(t, `{"saves":4}`, string(body["storage"]))
}
