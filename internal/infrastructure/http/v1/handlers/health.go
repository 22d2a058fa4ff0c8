package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/infrastructure/storage/postgres"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	pool    *postgres.Pool
	checks  map[string]HealthCheck
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler. The database is always checked
// when pool is set; extra checks (e.g. the cache) can be added with WithCheck.
func NewHealthHandler(pool *postgres.Pool, version string) *HealthHandler {
	h := &HealthHandler{
		pool:    pool,
		checks:  make(map[string]HealthCheck),
		version: version,
		started: time.Now(),
	}
	if pool != nil {
		h.checks["database"] = pool.Ping
	}
	return h
}

// WithCheck registers a readiness check.
func (h *HealthHandler) WithCheck(name string, check HealthCheck) *HealthHandler {
	h.checks[name] = check
	return h
}

// Live handles the liveness check (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles the readiness check (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = "unhealthy: " + err.Error()
			continue
		}
		results[name] = "healthy"
	}

	body := gin.H{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":     "bakerypos",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	if h.pool != nil {
		stat := h.pool.Stat()
		body["database"] = map[string]any{
			"total_conns":    stat.TotalConns(),
			"acquired_conns": stat.AcquiredConns(),
			"idle_conns":     stat.IdleConns(),
			"max_conns":      stat.MaxConns(),
		}
	}
	c.JSON(http.StatusOK, body)
}
