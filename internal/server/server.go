// Package server assembles the HTTP API: middleware chain, routes and the
// http.Server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/handlers"
	"task-tracker/internal/middleware"
	"task-tracker/internal/monitoring"
	"task-tracker/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// StoreStats is what the health and metrics endpoints need from the store.
type StoreStats interface {
	Health(ctx context.Context) error
	Stats() map[string]interface{}
}

type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	engine  *gin.Engine
	monitor *monitoring.Monitor
}

func New(cfg *config.Config, taskService services.TaskService, store StoreStats, logger *slog.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	monitor := monitoring.NewMonitor()
	if store != nil {
		monitor.RegisterHealthCheck("store", store.Health)
		monitor.RegisterStats("storage", store.Stats)
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		engine:  gin.New(),
		monitor: monitor,
	}
	s.routes(taskService)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(taskService services.TaskService) {
	r := s.engine

	// recovery sits inside the logger and the monitor so a panic still
	// reaches both as a 500
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(s.monitor.Middleware())
	r.Use(middleware.RecoveryWithLog(s.logger))
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.monitor.HealthHandler())
	r.GET("/health/live", s.monitor.LivenessHandler())
	r.GET("/health/ready", s.monitor.ReadinessHandler())
	r.GET("/metrics", s.monitor.MetricsHandler())

	api := r.Group("/api/v1")
	if s.cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(s.cfg.RateLimit.RequestsPerMin, s.cfg.RateLimit.BurstSize).Middleware())
	}

	taskHandler := handlers.NewTaskHandler(taskService, s.cfg.UI.PageSize).
		WithProgressPageSize(s.cfg.UI.ProgressPageSize)
	statsHandler := handlers.NewStatsHandler(taskService, s.cfg.UI.RecentCount)

	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.GetTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTaskByID)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.PUT("/:id/status", taskHandler.SetStatus)
		tasks.POST("/:id/toggle", taskHandler.ToggleTask)

		tasks.GET("/:id/progress", taskHandler.GetProgress)
		tasks.POST("/:id/progress", taskHandler.AddProgress)
		tasks.PUT("/:id/progress/:index", taskHandler.EditProgress)
		tasks.DELETE("/:id/progress/:index", taskHandler.DeleteProgress)
		tasks.PUT("/:id/entries/:entryID", taskHandler.EditEntry)
		tasks.DELETE("/:id/entries/:entryID", taskHandler.DeleteEntry)
	}

	stats := api.Group("/stats")
	{
		stats.GET("/dashboard", statsHandler.Dashboard)
		stats.GET("/status", statsHandler.StatusCounts)
		stats.GET("/categories", statsHandler.Categories)
		stats.GET("/priorities", statsHandler.Priorities)
	}
	api.GET("/categories", statsHandler.CategoryNames)
}

func (s *Server) corsConfig() cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, handlers.HeaderPersisted},
		MaxAge:        12 * time.Hour,
	}

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.GetServerAddr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr, "environment", s.cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
