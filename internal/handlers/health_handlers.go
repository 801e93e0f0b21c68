package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/caching"
	"github.com/Mj26111999/pern-saas-api-builder/internal/jobs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        *pgxpool.Pool
	cacheSvc  caching.CacheService
	scheduler *jobs.JobScheduler
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db *pgxpool.Pool, cacheSvc caching.CacheService, scheduler *jobs.JobScheduler) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cacheSvc:  cacheSvc,
		scheduler: scheduler,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck reports dependency health for the store and cache.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if err := h.checkDatabase(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.checkCache(ctx); err != nil {
		health.Services["cache"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["cache"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	_, err := h.db.Exec(ctx, "SELECT 1")
	return err
}

func (h *HealthHandlers) checkCache(ctx context.Context) error {
	return h.cacheSvc.SetString(ctx, "health_probe", "ok", 10*time.Second)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.checkDatabase(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Store unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMetrics provides application runtime metrics
func (h *HealthHandlers) GetMetrics(c echo.Context) error {
	metrics := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"version":    "1.0.0",
		"goroutines": runtime.NumGoroutine(),
		"database_connections": map[string]interface{}{
			"max":      h.db.Config().MaxConns,
			"acquired": h.db.Stat().AcquiredConns(),
			"idle":     h.db.Stat().IdleConns(),
		},
	}

	if h.scheduler != nil {
		metrics["jobs"] = h.scheduler.GetJobStatus()
	}

	return c.JSON(http.StatusOK, metrics)
}
