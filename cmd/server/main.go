package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/practiceforum/internal/bootstrap"
	"anoa.com/practiceforum/internal/config"
	"anoa.com/practiceforum/internal/server"
	"anoa.com/practiceforum/pkg/cache"
	"anoa.com/practiceforum/pkg/database"
	"anoa.com/practiceforum/pkg/logger"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.Connect(cfg.DatabaseDSN(), cfg.IsDevelopment())
	if err := bootstrap.Run(db, cfg.IsDevelopment()); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("redis unavailable: live notifications and bucket locks are disabled")
		redisClient = nil
	}

	srv, err := server.NewServer(ctx, cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server exited with error: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown finished with errors")
	}
}
