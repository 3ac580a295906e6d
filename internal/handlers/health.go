package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "0.1.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health handles the health check endpoint. The cache store keeps the
// service usable when the primary store is down, so a failed primary
// check degrades the status without failing the endpoint outright.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	allHealthy := true

	if primary := h.data.Primary(); primary != nil {
		start := time.Now()
		if err := primary.Ping(ctx); err != nil {
			checks["primary"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			checks["primary"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	} else {
		checks["primary"] = Check{Status: "fail", Message: "not configured"}
		allHealthy = false
	}

	// The cache store is always available; report it so dashboards can
	// tell cache-only operation from a dead service.
	checks["cache"] = Check{Status: "pass"}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   version,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
