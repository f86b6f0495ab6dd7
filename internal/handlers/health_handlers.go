package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool and the cache service
type Pinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker is satisfied by the object storage client
type BucketChecker interface {
	EnsureBucket(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	storage BucketChecker
	version string
	started time.Time
}

// NewHealthHandlers creates a new health handlers instance. storage may be
// nil when attachments are disabled.
func NewHealthHandlers(db Pinger, cache Pinger, storage BucketChecker, version string) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		storage: storage,
		version: version,
		started: time.Now(),
	}
}

func (h *HealthHandlers) Register(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)
	e.GET("/health/ready", h.ReadinessCheck)
	e.GET("/health/live", h.LivenessCheck)
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Goroutines int               `json:"goroutines"`
}

func (h *HealthHandlers) checks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"database": h.db.Ping,
		"redis":    h.cache.Ping,
	}
	if h.storage != nil {
		checks["storage"] = h.storage.EnsureBucket
	}
	return checks
}

// HealthCheck reports every dependency. A failing dependency degrades the
// status but still answers 200 so dashboards can read the body.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   make(map[string]string),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
	}
	for name, check := range h.checks() {
		if err := check(ctx); err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
			continue
		}
		health.Services[name] = "healthy"
	}
	return c.JSON(http.StatusOK, health)
}

// ReadinessCheck fails when the database or cache is unreachable
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if h.db.Ping(ctx) != nil || h.cache.Ping(ctx) != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
