// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/resonate/internal/civic"
)

// Refresher runs one neighborhood statistics cycle. *civic.Refresher
// implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*civic.Snapshot, error)
}

// RefreshServiceConfig holds the refresh loop schedule.
type RefreshServiceConfig struct {
	// OnStartup runs a cycle before the first tick.
	OnStartup bool

	// Interval between cycles. Default: 1h.
	Interval time.Duration

	// Timeout bounds a single cycle. Default: 5m.
	Timeout time.Duration
}

// RefreshService drives periodic neighborhood refreshes. A failed cycle is
// logged and retried on the next tick; the previous snapshot stays
// published.
type RefreshService struct {
	refresher Refresher
	config    RefreshServiceConfig
	logger    zerolog.Logger
	name      string
}

// NewRefreshService creates the refresh loop.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRefreshService(r Refresher, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &RefreshService{
		refresher: r,
		config:    cfg,
		logger:    logger.With().Str("service", "refresh").Logger(),
		name:      "refresh-service",
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("Refresh service starting")

	if s.config.OnStartup {
		s.refresh(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Refresh service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	snap, err := s.refresher.Refresh(cycleCtx)
	switch {
	case err == nil:
		s.logger.Info().Str("cycle", snap.Cycle).Dur("duration", time.Since(start)).Msg("Neighborhood refresh complete")
	case errors.Is(err, civic.ErrRefreshFailed):
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Neighborhood refresh incomplete")
	case ctx.Err() != nil:
		// shutting down
	default:
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Neighborhood refresh failed")
	}
}

// String names the service in supervisor logs.
func (s *RefreshService) String() string {
	return s.name
}
