package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docparse/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	models  ReadinessChecker
	journal port.ParseJournal
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(models ReadinessChecker, journal port.ParseJournal) *HealthHandler {
	return &HealthHandler{models: models, journal: journal}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.models.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "models not initialized"})
		return
	}
	if err := h.journal.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "journal not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
