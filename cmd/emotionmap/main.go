package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/logging"
	"github.com/sanspareilsmyn/emotionmap/internal/pipeline"
	"github.com/sanspareilsmyn/emotionmap/internal/server"
)

var (
	configFile = flag.String("config", "configs/config.dev.yaml", "Path to the configuration file")
	seats      = flag.Int("seats", 0, "Number of seats to advertise (overrides seats.total when positive)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	if *seats > 0 {
		cfg.Seats.Total = *seats
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Configuration loaded successfully",
		"path", *configFile,
		"source", cfg.Source.Type,
		"interval", cfg.Pipeline.Interval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		sugar.Infow("Received signal, initiating shutdown...", "signal", sig.String())
		cancel()
	}()

	// Ingest once before serving
	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to initialize pipeline", zap.Error(err))
	}

	snap, err := pipe.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		sugar.Info("Ingestion cancelled, exiting.")
		return
	case errors.Is(err, pipeline.ErrNoSamples), errors.Is(err, pipeline.ErrSourceRunFailed), errors.Is(err, pipeline.ErrTooManyWindows):
		// Keep serving; clients see zero seats.
		sugar.Errorw("No seat data available, serving empty dataset", zap.Error(err))
	default:
		sugar.Fatalw("Ingestion failed", zap.Error(err))
	}
	sugar.Infow("Dataset ready",
		"seats", len(snap.SeatIDs()),
		"total_seats", snap.TotalSeats(),
		"samples", snap.SampleCount(),
	)

	srv, err := server.New(cfg.Server, snap, logger.Named("http"))
	if err != nil {
		sugar.Fatalw("Failed to initialize HTTP server", zap.Error(err))
	}

	runErr := srv.Run(ctx)
	switch {
	case runErr == nil, errors.Is(runErr, context.Canceled):
		sugar.Info("HTTP server stopped gracefully.")
	default:
		sugar.Errorw("HTTP server stopped unexpectedly", zap.Error(runErr))
	}

	sugar.Info("emotionmap finished.")
}
