package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentrywaf/waf/internal/models"
	"gorm.io/gorm"
)

type LogsHandler struct {
	db *gorm.DB
}

func NewLogsHandler(db *gorm.DB) *LogsHandler {
	return &LogsHandler{db: db}
}

func (h *LogsHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50, 1, 200)
	offset := queryInt(c, "offset", 0, 0, -1)

	var logs []models.AttackLog
	err := h.db.WithContext(c.Request.Context()).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to list logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// queryInt parses an integer query param, clamping to [min, max] (max < 0
// means unbounded) and falling back to def on any parse failure.
func queryInt(c *gin.Context, name string, def, min, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if max >= 0 && v > max {
		return max
	}
	return v
}

type ipCount struct {
	IP    string `json:"ip"`
	Count int64  `json:"count"`
}

type typeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type hourCount struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

func (h *LogsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)

	var total, blocked, allowed int64
	if err := db.Model(&models.AttackLog{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to compute stats"})
		return
	}
	db.Model(&models.AttackLog{}).Where("action_taken = ?", "block").Count(&blocked)
	db.Model(&models.AttackLog{}).Where("action_taken = ?", models.ActionAllow).Count(&allowed)

	var topIPs []ipCount
	db.Model(&models.AttackLog{}).
		Select("ip_address as ip, count(*) as count").
		Group("ip_address").
		Order("count desc").
		Limit(5).
		Scan(&topIPs)

	var threatTypesLogs []models.AttackLog
	db.Model(&models.AttackLog{}).
		Where("threat_types IS NOT NULL").
		Find(&threatTypesLogs)
	threatCounts := map[string]int{}
	for _, l := range threatTypesLogs {
		for _, t := range l.ThreatTypes {
			threatCounts[t]++
		}
	}
	threatDistribution := make([]typeCount, 0, len(threatCounts))
	for t, count := range threatCounts {
		threatDistribution = append(threatDistribution, typeCount{Type: t, Count: count})
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	var recentLogs []models.AttackLog
	db.Model(&models.AttackLog{}).
		Where("created_at >= ?", since).
		Find(&recentLogs)
	hourlyCounts := map[string]int64{}
	for _, l := range recentLogs {
		hourlyCounts[l.CreatedAt.UTC().Format("15:00")]++
	}
	requestsOverTime := make([]hourCount, 0, len(hourlyCounts))
	for hour, count := range hourlyCounts {
		requestsOverTime = append(requestsOverTime, hourCount{Hour: hour, Count: count})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_requests":      total,
		"blocked_requests":    blocked,
		"allowed_requests":    allowed,
		"top_ips":             topIPs,
		"threat_distribution": threatDistribution,
		"requests_over_time":  requestsOverTime,
	})
}
