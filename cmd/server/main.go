package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mdavis72884/bramble-claude-sub001/config"
	"github.com/mdavis72884/bramble-claude-sub001/internal/api/handler"
	"github.com/mdavis72884/bramble-claude-sub001/internal/api/router"
	"github.com/mdavis72884/bramble-claude-sub001/internal/dto"
	"github.com/mdavis72884/bramble-claude-sub001/internal/repository"
	"github.com/mdavis72884/bramble-claude-sub001/internal/service"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/database"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/jwt"
	applogger "github.com/mdavis72884/bramble-claude-sub001/pkg/logger"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/metrics"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config/config.yaml)")
	flag.Parse()

	// 1. configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logging
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting class scheduler",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("max_span_days", cfg.Scheduler.MaxSpanDays),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. redis (optional: the service runs degraded without it)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable: previews uncached, drafts disabled, token revocation unchecked", zap.Error(err))
		rdb = nil
	}

	// 5. metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	// 6. validation tags for request binding
	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("register validators failed", zap.Error(err))
	}

	// 7. wiring: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, rdb, m, logger)
	h := handler.NewHandler(svc)

	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, m, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
