package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fuel-planner/internal/app"
	"fuel-planner/internal/config"
	"fuel-planner/internal/logger"
	"fuel-planner/internal/server"
)

const metricsRetentionDays = 90

func main() {
	// 1. Configuration and logging
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Services
	ctx := context.Background()
	application, closeApp, err := app.Bootstrap(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer closeApp()

	if n, err := application.CleanupMetrics(ctx, metricsRetentionDays); err != nil {
		zl.Warn("metrics cleanup failed", zap.Error(err))
	} else if n > 0 {
		zl.Info("old metrics removed", zap.Int64("rows", n))
	}

	// 3. HTTP
	srv := server.New(application, zl, server.Options{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
		MetricsDBPath:   cfg.MetricsDBPath,
		Provider:        cfg.LLMProvider,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Run(httpSrv, zl); err != nil {
			zl.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 4. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}

	zl.Info("Server exiting")
}
