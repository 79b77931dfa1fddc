package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alejandroruanova/cbam-emissions/internal/app"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/cache"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/queue"
	"github.com/alejandroruanova/cbam-emissions/internal/interfaces/handlers"
	"github.com/alejandroruanova/cbam-emissions/internal/interfaces/router"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/config"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/logger"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", logger.Err(err))
		os.Exit(1)
	}

	log := logger.InitializeWithWriter(cfg.Environment, cfg.LogLevel, os.Stdout)
	cfg.LogConfig(log)
	metrics.Init(prometheus.DefaultRegisterer)

	infra, err := app.OpenInfrastructure(cfg)
	if err != nil {
		log.Error("failed to initialize infrastructure", logger.Err(err))
		os.Exit(1)
	}
	defer infra.Close(log)

	redisCache, err := cache.NewRedisCache(&cfg.Cache, logger.NewServiceLogger("redis"))
	if err != nil {
		log.Error("failed to connect to redis", logger.Err(err))
		os.Exit(1)
	}
	defer redisCache.Close()

	uploaderCfg := ingestion.UploaderConfig{
		Files:        infra.Files,
		Batches:      infra.Repos.Batches,
		Parser:       infra.Parse,
		Processor:    infra.Processor(),
		MaxFileBytes: cfg.Storage.MaxFileSizeMB * 1024 * 1024,
	}
	if cfg.Queue.Enabled {
		client, err := queue.NewAsynqClient(&cfg.Queue, logger.NewServiceLogger("queue"))
		if err != nil {
			log.Error("failed to create queue client", logger.Err(err))
			os.Exit(1)
		}
		defer client.Close()
		uploaderCfg.Queue = client
	}

	fiberApp := router.CreateApp(router.Dependencies{
		Hierarchy: infra.HierarchyManager(),
		Sessions:  infra.SessionService(redisCache, &cfg.Session),
		Masters:   infra.Repos.Masters,
		Uploader:  ingestion.NewUploader(uploaderCfg, logger.NewServiceLogger("uploads")),
		Health: map[string]handlers.HealthChecker{
			"database": infra.DB,
			"redis":    redisCache,
		},
		BodyLimit:    int(cfg.Storage.MaxFileSizeMB+1) * 1024 * 1024,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Logger:       logger.NewServiceLogger("http"),
	})

	go func() {
		log.Info("http server listening", slog.String("addr", cfg.ListenAddr()))
		if err := fiberApp.Listen(cfg.ListenAddr()); err != nil {
			log.Error("http server stopped", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := fiberApp.ShutdownWithContext(ctx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
	}
}
