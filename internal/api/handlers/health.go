package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sentrywaf/waf/internal/database"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "sentry-waf"})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "error"
	}

	redisStatus := "ok"
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		redisStatus = "error"
	}

	status := http.StatusOK
	if dbStatus != "ok" || redisStatus != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"db": dbStatus, "redis": redisStatus})
}
