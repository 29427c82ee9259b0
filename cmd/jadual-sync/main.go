// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/jadual/internal/api"
	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/database"
	"github.com/tomtom215/jadual/internal/logging"
	"github.com/tomtom215/jadual/internal/session"
	"github.com/tomtom215/jadual/internal/supervisor"
	"github.com/tomtom215/jadual/internal/supervisor/services"
	"github.com/tomtom215/jadual/internal/sync"
	"github.com/tomtom215/jadual/internal/upstream"
)

func main() {
	os.Exit(run())
}

// run wires the pipeline and returns the process exit code.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("job", cfg.Sync.Job).
		Str("driver", cfg.Database.Driver).
		Dur("interval", cfg.Sync.Interval).
		Msg("Starting jadual-sync")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	var (
		client  upstream.API = upstream.NewClient(&cfg.Upstream)
		breaker *upstream.CircuitBreakerClient
	)
	if cfg.Upstream.CircuitBreaker {
		breaker = upstream.NewCircuitBreakerClient(client)
		client = breaker
	}

	sessions := session.NewManager(client, session.Credentials{
		Login:    cfg.Upstream.Login,
		Password: cfg.Upstream.Password,
	}, cfg.Sync.RetryBudget)

	pipeline, err := sync.NewPipeline(sync.Deps{
		Store:    db,
		Upstream: client,
		Session:  sessions,
		Options:  sync.OptionsFromConfig(cfg.Sync),
	}, cfg.Sync.Job)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build sync pipeline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sync.Interval <= 0 {
		return runOnce(ctx, pipeline)
	}

	runDaemon(ctx, cfg, db, pipeline, sessions, breaker)
	return 0
}

// runOnce runs the pipeline a single time and returns the process exit code.
func runOnce(ctx context.Context, pipeline *sync.Pipeline) int {
	if err := pipeline.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("Sync run aborted")
		return 1
	}
	return 0
}

func runDaemon(ctx context.Context, cfg *config.Config, db *database.DB, pipeline *sync.Pipeline, sessions *session.Manager, breaker *upstream.CircuitBreakerClient) {
	// Bridge zerolog to slog for sutureslog
	slogLogger := slog.New(logging.NewSlogHandler())

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddSyncService(services.NewSyncService(pipeline, cfg.Sync.Interval))
	logging.Info().Dur("interval", cfg.Sync.Interval).Strs("jobs", pipeline.Jobs()).Msg("Sync pipeline added to supervisor tree")

	if cfg.Server.Enabled {
		opts := []api.HandlerOption{
			api.WithSessionState(func() string { return sessions.State().String() }),
			api.WithTimeout(cfg.Server.Timeout),
		}
		if breaker != nil {
			opts = append(opts, api.WithBreakerState(breaker.StateName))
		}
		handler := api.NewHandler(db, pipeline, database.Tables(), opts...)

		server := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      api.NewRouter(handler),
			ReadTimeout:  cfg.Server.Timeout,
			WriteTimeout: cfg.Server.Timeout,
			IdleTimeout:  60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
		logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
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
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("jadual-sync stopped gracefully")
}
