package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	RequestCount    int64            `json:"request_count"`
	RequestDuration time.Duration    `json:"avg_request_duration_ms"`
	ActiveRequests  int64            `json:"active_requests"`
	ErrorCount      int64            `json:"error_count"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoint_calls"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
}

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

type HealthCheckFunc func(ctx context.Context) error

// StatsFunc contributes a named section to the metrics payload.
type StatsFunc func() map[string]interface{}

// Monitor collects request metrics and runs registered health checks.
type Monitor struct {
	mu            sync.RWMutex
	metrics       Metrics
	totalDuration time.Duration

	checksMu     sync.RWMutex
	checks       map[string]HealthCheckFunc
	stats        map[string]StatsFunc
	checkTimeout time.Duration
}

func NewMonitor() *Monitor {
	return &Monitor{
		metrics: Metrics{
			StatusCodes: make(map[string]int64),
			Endpoints:   make(map[string]int64),
			StartTime:   time.Now(),
		},
		checks:       make(map[string]HealthCheckFunc),
		stats:        make(map[string]StatsFunc),
		checkTimeout: 5 * time.Second,
	}
}

// Middleware records every request, including one whose handler panics; the
// panic is counted as a 500 and re-raised for an outer recovery.
func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.metrics.ActiveRequests++
		m.mu.Unlock()

		defer func() {
			statusCode := c.Writer.Status()
			r := recover()
			if r != nil {
				statusCode = http.StatusInternalServerError
			}
			m.record(c.Request.Method+" "+c.FullPath(), statusCode, time.Since(start))
			if r != nil {
				panic(r)
			}
		}()

		c.Next()
	}
}

func (m *Monitor) record(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.RequestCount++
	m.metrics.ActiveRequests--
	m.totalDuration += duration
	m.metrics.RequestDuration = m.totalDuration / time.Duration(m.metrics.RequestCount)
	m.metrics.LastRequest = time.Now()

	if statusCode >= 400 {
		m.metrics.ErrorCount++
	}
	m.metrics.StatusCodes[http.StatusText(statusCode)]++
	m.metrics.Endpoints[endpoint]++
}

// Snapshot returns a copy safe to marshal while requests keep arriving.
func (m *Monitor) Snapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.metrics
	snap.StatusCodes = make(map[string]int64, len(m.metrics.StatusCodes))
	for k, v := range m.metrics.StatusCodes {
		snap.StatusCodes[k] = v
	}
	snap.Endpoints = make(map[string]int64, len(m.metrics.Endpoints))
	for k, v := range m.metrics.Endpoints {
		snap.Endpoints[k] = v
	}
	return snap
}

type SystemMetrics struct {
	Uptime         time.Duration `json:"uptime"`
	MemoryUsage    MemoryStats   `json:"memory"`
	GoroutineCount int           `json:"goroutine_count"`
	CPUCount       int           `json:"cpu_count"`
	GoVersion      string        `json:"go_version"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc_mb"`
	TotalAlloc   uint64 `json:"total_alloc_mb"`
	Sys          uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	NextGC       uint64 `json:"next_gc_mb"`
	GCPauseTotal string `json:"gc_pause_total"`
}

func (m *Monitor) SystemMetrics() SystemMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return SystemMetrics{
		Uptime: time.Since(m.metrics.StartTime),
		MemoryUsage: MemoryStats{
			Alloc:        bToMb(ms.Alloc),
			TotalAlloc:   bToMb(ms.TotalAlloc),
			Sys:          bToMb(ms.Sys),
			NumGC:        ms.NumGC,
			NextGC:       bToMb(ms.NextGC),
			GCPauseTotal: time.Duration(ms.PauseTotalNs).String(),
		},
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

func (m *Monitor) RegisterHealthCheck(name string, check HealthCheckFunc) {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()
	m.checks[name] = check
}

func (m *Monitor) RegisterStats(name string, stats StatsFunc) {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()
	m.stats[name] = stats
}

// RunHealthChecks runs every registered check with its own timeout.
func (m *Monitor) RunHealthChecks(ctx context.Context) map[string]HealthCheck {
	m.checksMu.RLock()
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheckFunc, len(m.checks))
	for name, fn := range m.checks {
		checks[name] = fn
	}
	m.checksMu.RUnlock()

	sort.Strings(names)
	results := make(map[string]HealthCheck, len(names))
	for _, name := range names {
		results[name] = m.runCheck(ctx, name, checks[name])
	}
	return results
}

func (m *Monitor) runCheck(ctx context.Context, name string, fn HealthCheckFunc) HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, m.checkTimeout)
	defer cancel()

	check := HealthCheck{Name: name, Status: "healthy", LastRun: time.Now()}
	if err := fn(ctx); err != nil {
		check.Status = "unhealthy"
		check.Message = err.Error()
	}
	return check
}

func healthy(checks map[string]HealthCheck) bool {
	for _, check := range checks {
		if check.Status != "healthy" {
			return false
		}
	}
	return true
}

func (m *Monitor) MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"application": m.Snapshot(),
			"system":      m.SystemMetrics(),
			"timestamp":   time.Now(),
		}

		m.checksMu.RLock()
		for name, fn := range m.stats {
			response[name] = fn()
		}
		m.checksMu.RUnlock()

		c.JSON(http.StatusOK, response)
	}
}

func (m *Monitor) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := m.RunHealthChecks(c.Request.Context())

		overallStatus := "healthy"
		status := http.StatusOK
		if !healthy(checks) {
			overallStatus = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now(),
			"checks":    checks,
			"uptime":    time.Since(m.metrics.StartTime).String(),
		})
	}
}

func (m *Monitor) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthy(m.RunHealthChecks(c.Request.Context())) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ready",
				"timestamp": time.Now(),
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"timestamp": time.Now(),
		})
	}
}

func (m *Monitor) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
			"uptime":    time.Since(m.metrics.StartTime).String(),
		})
	}
}
