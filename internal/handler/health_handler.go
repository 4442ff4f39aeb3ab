package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-scheduler/pkg/mongodb"
	"github.com/prohmpiriya/event-scheduler/pkg/redis"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	mongo *mongodb.MongoDB
	redis *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mongo *mongodb.MongoDB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{mongo: mongo, redis: redisClient}
}

// Health handles GET /health. It reports liveness only.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready. It checks that both stores answer.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{}
	healthy := true

	if h.mongo != nil {
		if err := h.mongo.HealthCheck(ctx); err != nil {
			checks["mongodb"] = err.Error()
			healthy = false
		} else {
			checks["mongodb"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}
