// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package matching

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/resonate/internal/audience"
	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/events"
	"github.com/tomtom215/resonate/internal/logging"
	"github.com/tomtom215/resonate/internal/metrics"
)

// ErrInvalidTopN is returned when top_n exceeds the configured maximum.
var ErrInvalidTopN = errors.New("invalid top_n")

// ServiceConfig tunes the match service.
type ServiceConfig struct {
	ResultCacheTTL time.Duration
	DefaultTopN    int
	MaxTopN        int
}

// Request is a match request against stored publishers.
type Request struct {
	Campaign     audience.Campaign `json:"campaign"`
	PublisherIDs []string          `json:"publisher_ids,omitempty" validate:"omitempty,dive,required"`
	TopN         int               `json:"top_n,omitempty" validate:"gte=0"`
}

// Response is a ranked, truncated match run.
type Response struct {
	RunID             string    `json:"run_id"`
	CampaignID        string    `json:"campaign_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	Cached            bool      `json:"cached"`
	TopN              int       `json:"top_n"`
	Total             int       `json:"total"`
	MissingPublishers []string  `json:"missing_publishers,omitempty"`
	Run
}

// clone copies r with fresh top-level slices so callers may reorder or
// truncate them without touching the cached entry. Each MatchResult's
// nested details are still shared and must be treated as read-only.
func (r *Response) clone() *Response {
	out := *r
	out.MissingPublishers = slices.Clone(r.MissingPublishers)
	out.Results = slices.Clone(r.Results)
	out.Skipped = slices.Clone(r.Skipped)
	out.UnmappedTargets = slices.Clone(r.UnmappedTargets)
	return &out
}

// Service runs matches against the audience store and caches the
// responses until publisher data or neighborhood statistics change.
type Service struct {
	engine *Engine
	store  *audience.Store
	cache  cache.Cacher
	cfg    ServiceConfig
	logger zerolog.Logger
}

// NewService wires an engine to a store. c may be nil to disable caching.
func NewService(engine *Engine, store *audience.Store, c cache.Cacher, cfg ServiceConfig) *Service {
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 20
	}
	if cfg.MaxTopN < cfg.DefaultTopN {
		cfg.MaxTopN = cfg.DefaultTopN
	}
	return &Service{
		engine: engine,
		store:  store,
		cache:  c,
		cfg:    cfg,
		logger: logging.WithComponent("match-service"),
	}
}

type cacheKey struct {
	Target     audience.TargetAudience `json:"target"`
	Publishers []string                `json:"publishers"`
	TopN       int                     `json:"top_n"`
	Revision   uint64                  `json:"revision"`
}

// Match validates req, scores the requested publishers (all stored
// publishers when none are named) and returns the top results.
func (s *Service) Match(ctx context.Context, req Request) (*Response, error) {
	if err := req.Campaign.Validate(); err != nil {
		return nil, err
	}
	topN, err := s.topN(req.TopN)
	if err != nil {
		return nil, err
	}

	ids := append([]string(nil), req.PublisherIDs...)
	sort.Strings(ids)
	target := req.Campaign.TargetAudience()

	key := cache.GenerateKey("match", cacheKey{
		Target:     target,
		Publishers: ids,
		TopN:       topN,
		Revision:   s.store.Revision(),
	})
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if cached, ok := v.(*Response); ok {
				metrics.RecordCacheLookup("match", true)
				resp := cached.clone()
				resp.Cached = true
				return resp, nil
			}
		}
		metrics.RecordCacheLookup("match", false)
	}

	var candidates []audience.Publisher
	var missing []string
	if len(ids) == 0 {
		candidates = s.store.Publishers()
	} else {
		candidates, missing = s.store.PublishersByID(ids)
	}

	run, err := s.engine.Run(ctx, target, candidates)
	if err != nil {
		return nil, fmt.Errorf("match campaign %s: %w", req.Campaign.ID, err)
	}

	resp := &Response{
		RunID:             uuid.NewString(),
		CampaignID:        req.Campaign.ID,
		GeneratedAt:       time.Now().UTC(),
		TopN:              topN,
		Total:             len(run.Results),
		MissingPublishers: missing,
		Run:               *run,
	}
	resp.Results = Top(run.Results, topN)

	s.logger.Info().
		Str("run_id", resp.RunID).
		Str("campaign_id", resp.CampaignID).
		Int("candidates", run.Candidates).
		Int("results", resp.Total).
		Int("skipped", len(run.Skipped)).
		Msg("Matched campaign")

	if s.cache != nil {
		s.cache.SetWithTTL(key, resp.clone(), s.cfg.ResultCacheTTL)
	}
	return resp, nil
}

// MatchCampaign matches a stored campaign against every stored publisher.
func (s *Service) MatchCampaign(ctx context.Context, campaignID string, topN int) (*Response, error) {
	c, err := s.store.Campaign(campaignID)
	if err != nil {
		return nil, err
	}
	return s.Match(ctx, Request{Campaign: c, TopN: topN})
}

// HandleStatsRefreshed drops cached responses when a refresh changed any
// family. It is an events.StatsHandler.
func (s *Service) HandleStatsRefreshed(_ context.Context, ev events.StatsRefreshed) error {
	if !ev.Changed() || s.cache == nil {
		return nil
	}
	s.cache.Clear()
	s.logger.Debug().Str("cycle", ev.Cycle).Msg("Cleared match cache after neighborhood refresh")
	return nil
}

func (s *Service) topN(n int) (int, error) {
	switch {
	case n < 0 || n > s.cfg.MaxTopN:
		return 0, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidTopN, s.cfg.MaxTopN, n)
	case n == 0:
		return s.cfg.DefaultTopN, nil
	default:
		return n, nil
	}
}
