package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ogarx/internal/batch"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db       *sqlx.DB
	registry *batch.Registry
	model    string
}

// NewHealthHandler creates a new HealthHandler. db is nil when users are
// kept in memory; model is empty when no model client is configured.
func NewHealthHandler(db *sqlx.DB, registry *batch.Registry, model string) *HealthHandler {
	return &HealthHandler{db: db, registry: registry, model: model}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}
	if h.model == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no model client configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"model":    h.model,
		"sessions": h.registry.Count(),
	})
}
