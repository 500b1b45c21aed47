package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"measurebook/internal/common"

	"github.com/labstack/echo/v4"
)

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

// HealthHandlers handles liveness and readiness probes.
type HealthHandlers struct {
	checks  map[string]Check
	version string
	started time.Time
	timeout time.Duration
}

func NewHealthHandlers(version string, checks map[string]Check) *HealthHandlers {
	if checks == nil {
		checks = map[string]Check{}
	}
	return &HealthHandlers{
		checks:  checks,
		version: version,
		started: time.Now(),
		timeout: 2 * time.Second,
	}
}

// ReadinessStatus is the body of GET /health/ready.
type ReadinessStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// HealthCheck handles GET /health
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	common.StatusResponse
//	@Router		/health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, common.OK())
}

// ReadinessCheck handles GET /health/ready. Every registered dependency must
// answer within the timeout.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	status := &ReadinessStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string, len(h.checks)),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status.Services[name] = "unhealthy"
			status.Status = "degraded"
			continue
		}
		status.Services[name] = "healthy"
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
