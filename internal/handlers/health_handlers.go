package handlers

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/caching"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints. Nil dependencies are
// reported as "disabled" rather than unhealthy.
type HealthHandlers struct {
	db       Pinger
	cacheSvc caching.CacheService
	imageSvc services.ImageService
	version  string
	started  time.Time
}

func NewHealthHandlers(db Pinger, cacheSvc caching.CacheService, imageSvc services.ImageService, version string) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		cacheSvc: cacheSvc,
		imageSvc: imageSvc,
		version:  version,
		started:  time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status            string            `json:"status"`
	Timestamp         string            `json:"timestamp"`
	Services          map[string]string `json:"services"`
	DatabaseReachable bool              `json:"database_reachable"`
	Uptime            string            `json:"uptime"`
	Version           string            `json:"version"`
}

func probe(ctx context.Context, check func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := check(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// HealthCheck reports liveness and datastore reachability. Only the
// database decides the status code; cache and storage outages degrade.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	}

	if h.db != nil {
		health.Services["database"] = probe(ctx, h.db.Ping)
	} else {
		health.Services["database"] = "disabled"
	}
	health.DatabaseReachable = health.Services["database"] != "unhealthy"

	if h.cacheSvc != nil {
		health.Services["cache"] = probe(ctx, h.cacheSvc.Ping)
	} else {
		health.Services["cache"] = "disabled"
	}

	if h.imageSvc != nil {
		health.Services["storage"] = probe(ctx, h.imageSvc.Ping)
	} else {
		health.Services["storage"] = "disabled"
	}

	for _, s := range health.Services {
		if s == "unhealthy" {
			health.Status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if !health.DatabaseReachable {
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}
