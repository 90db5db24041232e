// Command vpconvertd runs the conversion service: it consumes conversion
// jobs from Kafka and publishes their results.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/baltrad/vpconvert/internal/adapter/httpadapter"
	kafkaadapter "github.com/baltrad/vpconvert/internal/adapter/kafka"
	"github.com/baltrad/vpconvert/internal/config"
	"github.com/baltrad/vpconvert/internal/job"
	"github.com/baltrad/vpconvert/internal/observability"
	"github.com/baltrad/vpconvert/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default: search standard locations)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateService()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	metrics := observability.NewMetrics()
	if cfg.Source != "" {
		logger.Info("configuration loaded", "path", cfg.Source)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	runner := job.NewRunner(job.RunnerConfig{
		Compression: cfg.Compression,
		OutputDir:   cfg.OutputDir,
		Quantities:  cfg.Quantities,
	}, nil, logger)

	p := pipeline.New(reader, runner, writer, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
