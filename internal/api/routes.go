// Package api wires the HTTP surface together: health, admin, metrics,
// realtime, and the proxy catch-all.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sentrywaf/waf/internal/api/handlers"
	"github.com/sentrywaf/waf/internal/api/middleware"
	"github.com/sentrywaf/waf/internal/blocklist"
	"github.com/sentrywaf/waf/internal/config"
	"github.com/sentrywaf/waf/internal/realtime"
	"github.com/sentrywaf/waf/internal/rulestore"
	"github.com/sentrywaf/waf/internal/waf"
	"gorm.io/gorm"
)

// Deps bundles the wired components Register needs to reach.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Rules     *rulestore.Store
	Blocklist *blocklist.Checker
	Hub       *realtime.Hub
	Pipeline  *waf.Pipeline
	Config    config.Config
}

// Register attaches every route named in the HTTP surface. The proxy
// catch-all is registered last via NoRoute so it never shadows a more
// specific route.
func Register(router *gin.Engine, deps Deps) {
	securityCfg := middleware.DefaultSecurityHeadersConfig()
	securityCfg.IsDevelopment = deps.Config.Environment == "development"
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(deps.Config.Environment == "development"),
		middleware.SecurityHeaders(securityCfg),
	)

	health := handlers.NewHealthHandler(deps.DB, deps.Redis)
	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ws := handlers.NewWebSocketHandler(deps.Hub)
	router.GET("/ws/logs", ws.Logs)

	api := router.Group("/api")
	if len(deps.Config.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = deps.Config.CORSOrigins
		corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}
		api.Use(cors.New(corsCfg))
	}

	rules := handlers.NewRulesHandler(deps.Rules)
	api.GET("/rules", rules.List)
	api.PATCH("/rules/:id/toggle", rules.Toggle)

	blocked := handlers.NewBlockedIPsHandler(deps.Blocklist)
	api.GET("/blocked-ips", blocked.List)
	api.DELETE("/blocked-ips/:ip", blocked.Unblock)

	logs := handlers.NewLogsHandler(deps.DB)
	api.GET("/logs", logs.List)
	api.GET("/stats", logs.Stats)

	router.NoRoute(deps.Pipeline.Handler())
}
