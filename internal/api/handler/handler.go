// Package handler provides HTTP handlers for all API endpoints.
// Report endpoints render the current pipeline report; rendered bodies are
// cached per report build and served with ETags.
package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/albapepper/scoracle-sheets/internal/api/respond"
	"github.com/albapepper/scoracle-sheets/internal/cache"
	"github.com/albapepper/scoracle-sheets/internal/config"
	"github.com/albapepper/scoracle-sheets/internal/pipeline"
)

// Reporter supplies the current report.
type Reporter interface {
	Current(ctx context.Context) (*pipeline.Report, error)
}

// HealthChecker verifies database connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	reports Reporter
	db      HealthChecker // nil when records come from a folder
	cache   *cache.Cache
	cfg     *config.Config

	mu      sync.Mutex
	builtAt time.Time // build time of the report the cache holds bodies for
}

// New creates a Handler with shared dependencies. db may be nil.
func New(reports Reporter, db HealthChecker, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		reports: reports,
		db:      db,
		cache:   c,
		cfg:     cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the record source.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Scoracle Sheets API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"source":  h.cfg.Source,
		"endpoints": []string{
			"/api/v1/summary",
			"/api/v1/matches",
			"/api/v1/teams",
			"/api/v1/workbook",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity when the postgres source is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not_configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, hits, misses).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
