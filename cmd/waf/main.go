package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sentrywaf/waf/internal/api"
	"github.com/sentrywaf/waf/internal/blocklist"
	"github.com/sentrywaf/waf/internal/config"
	"github.com/sentrywaf/waf/internal/database"
	"github.com/sentrywaf/waf/internal/eventlog"
	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/metrics"
	"github.com/sentrywaf/waf/internal/proxy"
	"github.com/sentrywaf/waf/internal/realtime"
	"github.com/sentrywaf/waf/internal/rulestore"
	"github.com/sentrywaf/waf/internal/server"
	"github.com/sentrywaf/waf/internal/version"
	"github.com/sentrywaf/waf/internal/waf"
)

func main() {
	logDir := "/app/data/logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logDir = "data/logs"
		_ = os.MkdirAll(logDir, 0755)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "waf.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))
	logger.Log().Infof("starting %s on version %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Log().Fatalf("connect database: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log().Fatalf("parse redis url: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)

	rules := rulestore.New(db)
	if err := rules.SeedIfEmpty(context.Background()); err != nil {
		logger.Log().Fatalf("seed default rules: %v", err)
	}

	blocked := blocklist.New(redisClient, db)
	sweeper, err := blocklist.NewSweeper(blocked, "@hourly")
	if err != nil {
		logger.Log().Fatalf("schedule blocklist sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	hub := realtime.NewHub()
	logs := eventlog.New(db, hub)
	forwarder := proxy.New(cfg.BackendURL)
	pipeline := waf.New(rules, blocked, logs, forwarder, cfg.ThreatScoreThreshold)

	metrics.Register()

	srv := server.New(api.Deps{
		DB:        db,
		Redis:     redisClient,
		Rules:     rules,
		Blocklist: blocked,
		Hub:       hub,
		Pipeline:  pipeline,
		Config:    cfg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	logger.Log().Infof("listening on %s", addr)
	if err := srv.Run(ctx); err != nil {
		logger.Log().Fatalf("server error: %v", err)
	}
}
