// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/config"
	"github.com/tomtom215/resonate/internal/events"
	"github.com/tomtom215/resonate/internal/logging"
	"github.com/tomtom215/resonate/internal/supervisor"
	"github.com/tomtom215/resonate/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
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
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("opendata_url", cfg.OpenData.BaseURL).
		Bool("refresh_enabled", cfg.Refresh.Enabled).
		Msg("Starting Resonate")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := wire(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := app.bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close event bus")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Refresh.Enabled {
		tree.AddIngestService(services.NewRefreshService(app.refresher, services.RefreshServiceConfig{
			OnStartup: cfg.Refresh.OnStartup,
			Interval:  cfg.Refresh.Interval,
		}, logging.WithComponent("refresh")))
	} else {
		logging.Warn().Msg("Scheduled refresh disabled; statistics load only via POST /api/v1/neighborhoods/refresh")
	}
	tree.AddIngestService(services.NewCacheJanitorService(map[string]cache.Sweeper{
		"opendata": app.opendataCache,
		"match":    app.matchCache,
	}, cfg.OpenData.CacheTTL, logging.WithComponent("cache")))

	tree.AddEventsService(events.NewListener(app.bus, "match-cache", app.matches.HandleStatsRefreshed, logging.WithComponent("events")))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
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

	logging.Info().Msg("Application stopped gracefully")
}
