// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package matching scores publishers against a campaign's target audience
// and returns them ranked with explanations, confidence and cost.
//
// Each publisher is scored on five dimensions (geographic, demographic,
// economic, cultural, reach). The overall score is their weighted sum with
// weights normalized to 100, so campaigns that weight in any scale still
// land on the same 0-100 range. Scoring fans out over a bounded worker pool
// and the results are sorted once: overall score descending, publisher id
// ascending. Identical inputs always give identical output.
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/resonate/internal/audience"
	"github.com/tomtom215/resonate/internal/civic"
	"github.com/tomtom215/resonate/internal/logging"
	"github.com/tomtom215/resonate/internal/metrics"
	"github.com/tomtom215/resonate/internal/neighborhood"
)

// Config tunes the engine.
type Config struct {
	// Workers bounds concurrent publisher scoring.
	Workers int

	// ReasonThreshold is the sub-score at or above which a dimension
	// contributes a match reason. Must be above NeutralScore.
	ReasonThreshold float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{Workers: 8, ReasonThreshold: 70}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.ReasonThreshold <= NeutralScore || c.ReasonThreshold > 100 {
		return fmt.Errorf("reason threshold must be above %g and at most 100, got %g", NeutralScore, c.ReasonThreshold)
	}
	return nil
}

// StatsProvider supplies the latest civic snapshot for match evidence.
// *civic.Refresher implements it.
type StatsProvider interface {
	Snapshot() *civic.Snapshot
}

// SkipReason says why a candidate was left out of the results.
type SkipReason string

const (
	SkipMalformedProfile  SkipReason = "malformed_profile"
	SkipNoApplicableRates SkipReason = "no_applicable_rates"
)

// Skip is one excluded candidate.
type Skip struct {
	PublisherID string     `json:"publisher_id"`
	Reason      SkipReason `json:"reason"`
	Fields      []string   `json:"fields,omitempty"`
}

// Run is the full outcome of one match call.
type Run struct {
	Results      []MatchResult `json:"results"`
	Skipped      []Skip        `json:"skipped,omitempty"`
	Candidates   int           `json:"candidates"`
	Weights      Weights       `json:"weights"`
	WeightSource WeightSource  `json:"weight_source"`
	// UnmappedTargets are target neighborhood names the normalizer could
	// not resolve. They are ignored for scoring.
	UnmappedTargets []string `json:"unmapped_targets,omitempty"`
}

// Engine scores and ranks publishers. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	cfg        Config
	normalizer *neighborhood.Normalizer
	stats      StatsProvider
	logger     zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStats attaches a civic snapshot source for neighborhood evidence.
func WithStats(p StatsProvider) Option {
	return func(e *Engine) { e.stats = p }
}

// WithLogger sets the engine logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine.
func NewEngine(cfg Config, n *neighborhood.Normalizer, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	if n == nil {
		return nil, errors.New("neighborhood normalizer is required")
	}
	e := &Engine{
		cfg:        cfg,
		normalizer: n,
		logger:     logging.WithComponent("matching"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Match ranks candidates for target. It always returns a list, empty when
// nothing qualifies or ctx is cancelled.
func (e *Engine) Match(ctx context.Context, target audience.TargetAudience, candidates []audience.Publisher) []MatchResult {
	run, err := e.Run(ctx, target, candidates)
	if err != nil {
		return []MatchResult{}
	}
	return run.Results
}

type outcome struct {
	result MatchResult
	skip   *Skip
}

// Run scores every candidate and returns the ranked results with the
// skipped candidates. The only error is ctx's.
func (e *Engine) Run(ctx context.Context, target audience.TargetAudience, candidates []audience.Publisher) (*Run, error) {
	start := time.Now()

	weights, source, err := ResolveWeights(&target)
	if err != nil {
		// Presets are static; reaching this means the table is broken.
		e.logger.Error().Err(err).Msg("Weight presets failed to normalize, using defaults")
		weights, source = DefaultWeights, WeightsFromDefault
	}

	pt := prepareTarget(&target, e.normalizer)
	if len(pt.unmapped) > 0 {
		e.logger.Warn().Strs("neighborhoods", pt.unmapped).Msg("Ignoring unmapped target neighborhoods")
	}

	var snap *civic.Snapshot
	if e.stats != nil {
		snap = e.stats.Snapshot()
	}

	slots := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = e.score(pt, &candidates[i], weights, source, snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &Run{
		Results:         make([]MatchResult, 0, len(candidates)),
		Candidates:      len(candidates),
		Weights:         weights,
		WeightSource:    source,
		UnmappedTargets: pt.unmapped,
	}
	for i := range slots {
		if s := slots[i].skip; s != nil {
			run.Skipped = append(run.Skipped, *s)
			continue
		}
		run.Results = append(run.Results, slots[i].result)
	}
	sortResults(run.Results)

	metrics.RecordMatch(time.Since(start), len(candidates))
	e.logger.Debug().
		Int("candidates", len(candidates)).
		Int("results", len(run.Results)).
		Int("skipped", len(run.Skipped)).
		Str("weight_source", string(source)).
		Dur("duration", time.Since(start)).
		Msg("Match run complete")
	return run, nil
}

// sortResults orders by overall score descending, then publisher id.
func sortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].OverallScore != results[j].OverallScore {
			return results[i].OverallScore > results[j].OverallScore
		}
		return results[i].PublisherID < results[j].PublisherID
	})
}

// score evaluates one publisher. It reads only its arguments.
func (e *Engine) score(pt *target, p *audience.Publisher, w Weights, src WeightSource, snap *civic.Snapshot) outcome {
	if err := p.Validate(); err != nil {
		var merr *audience.MalformedProfileError
		var fields []string
		if errors.As(err, &merr) {
			fields = merr.Fields
		}
		metrics.PublishersSkipped.WithLabelValues(string(SkipMalformedProfile)).Inc()
		e.logger.Warn().Err(err).Str("publisher_id", p.ID).Strs("fields", fields).Msg("Skipping malformed publisher profile")
		return outcome{skip: &Skip{PublisherID: p.ID, Reason: SkipMalformedProfile, Fields: fields}}
	}

	cost, ok := estimateCost(p.RateCard, pt.formats, pt.budget)
	if !ok {
		metrics.PublishersSkipped.WithLabelValues(string(SkipNoApplicableRates)).Inc()
		e.logger.Debug().Str("publisher_id", p.ID).Strs("deliverables", pt.formats).Msg("Skipping publisher without applicable rates")
		return outcome{skip: &Skip{PublisherID: p.ID, Reason: SkipNoApplicableRates}}
	}

	a := p.Audience
	fp := publisherFootprint(a.Geographic, e.normalizer)

	var raw Scores
	d := MatchDetails{Weights: w, WeightSource: src}
	compared := 1 // geography is always compared

	raw.Geographic, d.Geographic = scoreGeographic(pt, fp, e.normalizer)

	var demoCompared bool
	raw.Demographic, d.Languages, d.AgeRanges, demoCompared = scoreDemographic(pt, a.Demographic)

	var econCompared, cultCompared bool
	raw.Economic, d.Economic, econCompared, d.EconomicDefaulted = scoreEconomic(pt, a.Economic)
	raw.Cultural, d.Cultural, cultCompared, d.CulturalDefaulted = scoreCultural(pt, a.Cultural)

	d.Reach = p.Reach()
	d.EngagementRate = p.EngagementRate()
	raw.Reach = scoreReach(d.Reach, d.EngagementRate)

	for _, c := range []bool{demoCompared, econCompared, cultCompared, d.Reach > 0 || len(p.Platforms) > 0} {
		if c {
			compared++
		}
	}
	d.ComparedDimensions = compared

	scores := Scores{
		Geographic:  round1(clamp(raw.Geographic, 0, 100)),
		Demographic: round1(clamp(raw.Demographic, 0, 100)),
		Economic:    round1(clamp(raw.Economic, 0, 100)),
		Cultural:    round1(clamp(raw.Cultural, 0, 100)),
		Reach:       round1(clamp(raw.Reach, 0, 100)),
	}

	if pt.mode == ModeNeighborhoods && snap != nil {
		d.NeighborhoodContext = e.evidence(pt, fp, snap)
	}

	res := MatchResult{
		PublisherID:     p.ID,
		PublisherName:   p.Name,
		OverallScore:    round1(w.Apply(scores)),
		Scores:          scores,
		MatchDetails:    d,
		ConfidenceLevel: confidenceFor(a.Verification(), compared, d.EconomicDefaulted || d.CulturalDefaulted),
		EstimatedCost:   cost,
	}
	res.MatchReasons = buildReasons(scores, &res.MatchDetails, e.cfg.ReasonThreshold)
	if d.Reach > 0 {
		r := d.Reach
		res.EstimatedReach = &r
	}
	return outcome{result: res}
}

// evidence lists civic rates for the target neighborhoods the publisher
// covers, one row per usable metric family.
func (e *Engine) evidence(pt *target, fp footprint, snap *civic.Snapshot) []NeighborhoodEvidence {
	families := make([]string, 0, len(snap.Families))
	for name, fs := range snap.Families {
		if fs.Usable() {
			families = append(families, name)
		}
	}
	sort.Strings(families)

	var out []NeighborhoodEvidence
	for _, id := range pt.neighborhoods {
		if _, ok := fp.neighborhoods[id]; !ok && !fp.citywide {
			continue
		}
		for _, name := range families {
			fs := snap.Families[name]
			st, ok := fs.Neighborhoods[id]
			if !ok {
				continue
			}
			out = append(out, NeighborhoodEvidence{
				NeighborhoodID: id,
				Name:           e.normalizer.Name(id),
				Family:         name,
				RatePer1000:    st.RatePer1000,
				CityAverage:    fs.City.AverageRate,
				Rank:           fs.City.Rank(id),
				Ranked:         len(fs.City.Rankings),
			})
		}
	}
	return out
}
