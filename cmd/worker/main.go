package main

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alejandroruanova/cbam-emissions/internal/app"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/queue"
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

	server, err := queue.NewAsynqServer(&cfg.Queue, logger.NewServiceLogger("worker"))
	if err != nil {
		log.Error("failed to create worker", logger.Err(err))
		os.Exit(1)
	}
	server.Handle(queue.TaskTypeIngestRawInputs,
		queue.NewIngestHandler(infra.Processor(), logger.NewServiceLogger("ingest-handler")))

	// Run blocks until SIGINT or SIGTERM, then drains in-flight tasks
	if err := server.Start(); err != nil {
		log.Error("worker stopped", logger.Err(err))
		os.Exit(1)
	}
}
