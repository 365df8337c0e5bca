package handlers

import (
	"context"
	"net/http"
	"time"

	"batstats/internal/caching"

	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	sessions caching.SessionStore
	started  time.Time
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(sessions caching.SessionStore) *HealthHandlers {
	return &HealthHandlers{
		sessions: sessions,
		started:  time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
}

// HealthCheck reports whether the session store is reachable
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}

	if err := h.sessions.Ping(ctx); err != nil {
		health.Services["sessions"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["sessions"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}
