// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package api

import (
	"context"
	"time"

	"github.com/tomtom215/resonate/internal/civic"
	"github.com/tomtom215/resonate/internal/matching"
	"github.com/tomtom215/resonate/internal/neighborhood"
)

// StatsSource serves neighborhood statistics. *civic.Refresher implements it.
type StatsSource interface {
	Snapshot() *civic.Snapshot
	Family(name string) (*civic.FamilyStats, error)
	Refresh(ctx context.Context) (*civic.Snapshot, error)
}

// Matcher runs campaign matches. *matching.Service implements it.
type Matcher interface {
	Match(ctx context.Context, req matching.Request) (*matching.Response, error)
	MatchCampaign(ctx context.Context, campaignID string, topN int) (*matching.Response, error)
}

// HandlerConfig tunes request handling.
type HandlerConfig struct {
	// RefreshTimeout bounds a manual refresh triggered over HTTP.
	RefreshTimeout time.Duration

	// MaxBodyBytes caps match request bodies.
	MaxBodyBytes int64

	Version string
}

// DefaultHandlerConfig returns the handler defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		RefreshTimeout: 2 * time.Minute,
		MaxBodyBytes:   1 << 20,
		Version:        "dev",
	}
}

// Handler serves the REST API.
type Handler struct {
	normalizer *neighborhood.Normalizer
	stats      StatsSource
	matcher    Matcher
	cfg        HandlerConfig
	startTime  time.Time
}

// NewHandler creates a Handler.
func NewHandler(n *neighborhood.Normalizer, stats StatsSource, matcher Matcher, cfg HandlerConfig) *Handler {
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultHandlerConfig().RefreshTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultHandlerConfig().MaxBodyBytes
	}
	return &Handler{
		normalizer: n,
		stats:      stats,
		matcher:    matcher,
		cfg:        cfg,
		startTime:  time.Now(),
	}
}
