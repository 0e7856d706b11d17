// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/affinity/internal/api"
	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend/pipeline"
	"github.com/tomtom215/affinity/internal/supervisor"
	"github.com/tomtom215/affinity/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Affinity failed")
	}
}

func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("source_format", cfg.Source.Format).
		Str("source_dir", cfg.Source.Dir).
		Str("db_path", cfg.Database.Path).
		Bool("server", cfg.Server.Enabled).
		Msg("Starting Affinity")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	var loader pipeline.SnapshotLoader = database.NewLoader(db, cfg.Source, cfg.Recommend.ExtraAttributes)
	if cfg.Database.BreakerEnabled {
		loader = database.NewBreakerLoader(loader, database.DefaultBreakerSettings())
	}

	engine, err := pipeline.NewEngine(cfg.Engine(), logging.Logger())
	if err != nil {
		return err
	}
	refresher := pipeline.NewRefresher(loader, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	if !cfg.Server.Enabled {
		return runBatch(ctx, cfg, refresher)
	}
	return serve(ctx, cfg, refresher)
}

// runBatch builds one run, writes the exports and exits.
func runBatch(ctx context.Context, cfg *config.Config, refresher *pipeline.Refresher) error {
	run, err := refresher.BuildRun(ctx)
	if err != nil {
		return fmt.Errorf("build run: %w", err)
	}
	return exportRun(ctx, cfg, run)
}

// serve runs the refresh service, the optional snapshot watcher and the
// HTTP query API under the supervisor tree until ctx is canceled.
func serve(ctx context.Context, cfg *config.Config, refresher *pipeline.Refresher) error {
	holder := &pipeline.Holder{}

	refresh := services.NewRefreshService(refresher, holder, services.RefreshServiceConfig{
		OnStartup: cfg.Refresh.OnStartup,
		Interval:  cfg.Refresh.Interval,
		Timeout:   cfg.Refresh.Timeout,
		OnBuilt: func(run *pipeline.Run) {
			if err := exportRun(ctx, cfg, run); err != nil {
				logging.Error().Err(err).Str("run_id", run.ID).Msg("Export failed")
			}
		},
	}, logging.Logger())

	handler := api.NewHandler(holder, api.HandlerConfig{
		Version:           version,
		DefaultN:          cfg.Recommend.N,
		DefaultStrategy:   cfg.Evaluation.Strategy,
		DefaultUsers:      cfg.Evaluation.Users,
		EvaluationTimeout: cfg.Server.Timeout,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := services.NewServer(addr, router.Setup(), cfg.Server.Timeout)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.Logger()), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// Data layer
	tree.AddDataService(refresh)
	if files := cfg.Source.Files(); cfg.Refresh.Watch && len(files) > 0 {
		tree.AddDataService(services.NewSnapshotWatcher(files, refresh, cfg.Refresh.WatchMinInterval, logging.Logger()))
		logging.Info().Strs("files", files).Msg("Snapshot watcher added")
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))
	logging.Info().Str("addr", addr).Msg("HTTP server service added")

	go trackUptime(ctx, time.Now())

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Affinity stopped gracefully")
	return nil
}

func trackUptime(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.AppUptime.Set(time.Since(started).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
