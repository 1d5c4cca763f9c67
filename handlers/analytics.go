package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classroom-energy-api/ml"
	"classroom-energy-api/services"
)

const statsCacheKey = "analytics:dashboard"

type AnalyticsHandler struct {
	energyService *services.EnergyService
	cache         *services.CacheService
	engine        *ml.Engine
	startedAt     time.Time
}

func NewAnalyticsHandler(energyService *services.EnergyService, cache *services.CacheService, engine *ml.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{
		energyService: energyService,
		cache:         cache,
		engine:        engine,
		startedAt:     time.Now(),
	}
}

// Dashboard serves the aggregate stats, cache-aside with a short TTL since
// the numbers only move when a sweep runs.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var cached services.DashboardStats
	if hit, err := h.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	stats, err := h.energyService.Stats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	_ = h.cache.Set(ctx, statsCacheKey, stats, 30*time.Second)
	c.JSON(http.StatusOK, stats)
}

// RecentDecisions returns the latest logged energy decisions.
func (h *AnalyticsHandler) RecentDecisions(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	decisions, err := h.energyService.RecentDecisions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": decisions, "count": len(decisions)})
}

// Health is the liveness/readiness surface.
func (h *AnalyticsHandler) Health(c *gin.Context) {
	status := h.engine.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"model": gin.H{
			"type":             status.ModelType,
			"is_trained":       status.IsTrained,
			"knowledge_points": status.KnowledgePoints,
		},
	})
}
