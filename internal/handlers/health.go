package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"production-tracking-service/internal/cache"
	"production-tracking-service/internal/repository"
)

const serviceName = "production-tracking-service"

// HealthCheck returns service health status (basic)
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

type HealthHandler struct {
	store repository.Store
	cache *cache.ReportCache
}

func NewHealthHandler(store repository.Store, reportCache *cache.ReportCache) *HealthHandler {
	return &HealthHandler{store: store, cache: reportCache}
}

// Ready checks the store and reports optional dependencies
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	status := http.StatusOK
	health := gin.H{
		"status":  "ready",
		"service": serviceName,
		"checks":  checks,
	}

	if err := h.store.Ping(ctx); err != nil {
		checks["store"] = gin.H{"status": "unhealthy", "error": err.Error()}
		health["status"] = "not_ready"
		status = http.StatusServiceUnavailable
	} else {
		checks["store"] = gin.H{"status": "healthy"}
	}

	if h.cache.Enabled() {
		checks["report_cache"] = gin.H{"status": "enabled"}
	} else {
		checks["report_cache"] = gin.H{"status": "disabled"}
	}

	c.JSON(status, health)
}
