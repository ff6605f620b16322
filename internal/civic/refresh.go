// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package civic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/classify"
	"github.com/tomtom215/resonate/internal/config"
	"github.com/tomtom215/resonate/internal/events"
	"github.com/tomtom215/resonate/internal/logging"
	"github.com/tomtom215/resonate/internal/metrics"
	"github.com/tomtom215/resonate/internal/neighborhood"
	"github.com/tomtom215/resonate/internal/opendata"
)

// Status is the freshness of one family in a snapshot.
type Status string

const (
	StatusFresh   Status = "fresh"
	StatusPartial Status = "partial"
	StatusStale   Status = "stale"
	StatusFailed  Status = "failed"
)

// User-facing refresh messages.
const (
	StaleMessage   = "unable to refresh neighborhood data, showing cached results"
	FailedMessage  = "neighborhood data is currently unavailable"
	partialMessage = "some sources could not be refreshed: "
)

// ErrRefreshFailed is returned when a family has neither fresh data nor a
// previous snapshot to fall back to.
var ErrRefreshFailed = errors.New("neighborhood data refresh failed")

// ErrNoSnapshot is returned by readers before the first refresh completes.
var ErrNoSnapshot = errors.New("neighborhood data not yet loaded")

// SourceStatus describes one upstream fetch in a refresh cycle.
type SourceStatus struct {
	Dataset   string    `json:"dataset"`
	Records   int       `json:"records"`
	Dropped   int       `json:"dropped"`
	Cached    bool      `json:"cached"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FamilyStats is the published result of one family. It is immutable; a
// refresh replaces it wholesale.
type FamilyStats struct {
	Family        string                                `json:"family"`
	Status        Status                                `json:"status"`
	Message       string                                `json:"message,omitempty"`
	Since         time.Time                             `json:"since"`
	RefreshedAt   time.Time                             `json:"refreshed_at"`
	CheckedAt     time.Time                             `json:"checked_at"`
	Sources       map[Source]SourceStatus               `json:"sources"`
	Neighborhoods map[neighborhood.ID]NeighborhoodStats `json:"neighborhoods"`
	City          CityStats                             `json:"city"`
}

// Usable reports whether the family carries statistics.
func (f *FamilyStats) Usable() bool {
	return f != nil && f.Status != StatusFailed
}

// Snapshot is the full set of families published by one refresh cycle.
type Snapshot struct {
	Cycle     string                  `json:"cycle"`
	UpdatedAt time.Time               `json:"updated_at"`
	Families  map[string]*FamilyStats `json:"families"`
}

// Family returns the named family, or nil.
func (s *Snapshot) Family(name string) *FamilyStats {
	if s == nil {
		return nil
	}
	return s.Families[name]
}

// Notifier receives refresh outcomes. *events.Bus implements it.
type Notifier interface {
	PublishStatsRefreshed(ctx context.Context, ev events.StatsRefreshed) error
}

// RefresherConfig selects datasets and the query window.
type RefresherConfig struct {
	Datasets   config.DatasetsConfig
	Lookback   time.Duration
	MaxRecords int
}

// NewRefresherConfig derives refresher settings from application config.
func NewRefresherConfig(cfg *config.Config) RefresherConfig {
	return RefresherConfig{
		Datasets:   cfg.OpenData.Datasets,
		Lookback:   cfg.Refresh.Lookback,
		MaxRecords: cfg.OpenData.MaxRecords,
	}
}

// windowGranularity aligns the start of the query window so every cycle
// within a day sends the same $where and reuses cached pages.
const windowGranularity = 24 * time.Hour

// QueryWindowStart is the lower bound of the refresh window: now minus
// lookback, truncated to a UTC day boundary.
func QueryWindowStart(now time.Time, lookback time.Duration) time.Time {
	return now.UTC().Add(-lookback).Truncate(windowGranularity)
}

type sourceResult struct {
	source  Source
	dataset string
	records []NeighborhoodRecord
	dropped int
	meta    opendata.Meta
	err     error
}

type sourceSpec struct {
	source  Source
	family  string
	dataset string
	run     func(ctx context.Context, since time.Time) sourceResult
}

// Refresher runs refresh cycles and holds the latest Snapshot. Cycles are
// serialized; readers never block.
type Refresher struct {
	fetcher    opendata.Fetcher
	normalizer *neighborhood.Normalizer
	cfg        RefresherConfig
	notifier   Notifier
	clock      cache.Clock
	logger     zerolog.Logger

	sources []sourceSpec

	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithNotifier publishes an event after every cycle.
func WithNotifier(n Notifier) RefresherOption {
	return func(r *Refresher) { r.notifier = n }
}

// WithRefreshClock injects the clock used for the query window.
func WithRefreshClock(c cache.Clock) RefresherOption {
	return func(r *Refresher) { r.clock = c }
}

// WithRefreshLogger sets the logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithRefreshLogger(l zerolog.Logger) RefresherOption {
	return func(r *Refresher) { r.logger = l }
}

// NewRefresher builds a refresher. Families whose datasets are all
// unconfigured are skipped.
func NewRefresher(f opendata.Fetcher, n *neighborhood.Normalizer, cfg RefresherConfig, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		fetcher:    f,
		normalizer: n,
		cfg:        cfg,
		clock:      cache.SystemClock,
		logger:     logging.WithComponent("civic"),
	}
	for _, opt := range opts {
		opt(r)
	}

	ds := cfg.Datasets
	r.addSource(SafetyFamily, SourcePolice, ds.PoliceIncidents, func(ctx context.Context, since time.Time) sourceResult {
		return fetchSource(ctx, r, opendata.PoliceIncidentDataset(ds.PoliceIncidents), PoliceIncidentMapping, since)
	})
	r.addSource(SafetyFamily, SourceFire, ds.FireIncidents, func(ctx context.Context, since time.Time) sourceResult {
		return fetchSource(ctx, r, opendata.FireIncidentDataset(ds.FireIncidents), FireIncidentMapping, since)
	})
	r.addSource(ServiceRequestFamily, SourceServiceRequests, ds.ServiceRequests, func(ctx context.Context, since time.Time) sourceResult {
		return fetchSource(ctx, r, opendata.ServiceRequestDataset(ds.ServiceRequests), ServiceRequestMapping, since)
	})
	r.addSource(EvictionFamily, SourceEvictions, ds.Evictions, func(ctx context.Context, since time.Time) sourceResult {
		return fetchSource(ctx, r, opendata.EvictionDataset(ds.Evictions), EvictionMapping, since)
	})
	return r
}

func (r *Refresher) addSource(f Family, src Source, datasetID string, run func(context.Context, time.Time) sourceResult) {
	if datasetID == "" {
		return
	}
	r.sources = append(r.sources, sourceSpec{source: src, family: f.Name, dataset: datasetID, run: run})
}

func fetchSource[T any](ctx context.Context, r *Refresher, ds opendata.Dataset, m Mapping[T], since time.Time) sourceResult {
	logger := r.logger.With().Str("source", string(m.Source)).Logger()
	rows, undecodable, meta, err := opendata.FetchTyped[T](ctx, r.fetcher, ds, since, r.cfg.MaxRecords, logger)
	if err != nil {
		return sourceResult{source: m.Source, dataset: ds.ID, err: err}
	}
	records, unmapped := m.MapAll(rows, r.normalizer, logger)
	return sourceResult{
		source:  m.Source,
		dataset: ds.ID,
		records: records,
		dropped: undecodable + unmapped,
		meta:    meta,
	}
}

// Snapshot returns the latest snapshot, or nil before the first refresh.
func (r *Refresher) Snapshot() *Snapshot {
	return r.snapshot.Load()
}

// Family returns the latest usable stats for a family.
func (r *Refresher) Family(name string) (*FamilyStats, error) {
	fs := r.Snapshot().Family(name)
	if fs == nil {
		return nil, ErrNoSnapshot
	}
	if !fs.Usable() {
		return fs, ErrRefreshFailed
	}
	return fs, nil
}

// Refresh runs one cycle. Upstream fetches for every family run
// concurrently and are joined before aggregation. The new snapshot is
// published even when some families are stale; the returned error reports
// families that failed outright.
func (r *Refresher) Refresh(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	since := time.Time{}
	if r.cfg.Lookback > 0 {
		since = QueryWindowStart(now, r.cfg.Lookback)
	}
	cycle := uuid.New().String()
	logger := r.logger.With().Str("cycle", cycle).Logger()
	logger.Info().Int("sources", len(r.sources)).Time("since", since).Msg("Refreshing neighborhood data")

	results := make([]sourceResult, len(r.sources))
	var g errgroup.Group
	for i, s := range r.sources {
		g.Go(func() error {
			results[i] = s.run(ctx, since)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return r.Snapshot(), err
	}

	prev := r.Snapshot()
	next := &Snapshot{
		Cycle:     cycle,
		UpdatedAt: now,
		Families:  make(map[string]*FamilyStats),
	}
	outcomes := make(map[string]string)
	var failed []string

	for _, fam := range Families() {
		var famResults []sourceResult
		for i, s := range r.sources {
			if s.family == fam.Name {
				famResults = append(famResults, results[i])
			}
		}
		if len(famResults) == 0 {
			continue
		}
		fs := r.buildFamily(fam, famResults, prev.Family(fam.Name), since, now, logger)
		next.Families[fam.Name] = fs
		outcomes[fam.Name] = string(fs.Status)
		metrics.RecordRefresh(fam.Name, string(fs.Status))
		if fs.Status == StatusFailed {
			failed = append(failed, fam.Name)
		}
	}

	r.snapshot.Store(next)

	if r.notifier != nil {
		ev := events.StatsRefreshed{Cycle: cycle, RefreshedAt: now, Families: outcomes}
		if err := r.notifier.PublishStatsRefreshed(ctx, ev); err != nil {
			logger.Warn().Err(err).Msg("Failed to publish refresh event")
		}
	}

	if len(failed) > 0 {
		return next, fmt.Errorf("%w: %s", ErrRefreshFailed, strings.Join(failed, ", "))
	}
	return next, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (r *Refresher) buildFamily(fam Family, results []sourceResult, prev *FamilyStats, since, now time.Time, logger zerolog.Logger) *FamilyStats {
	sources := make(map[Source]SourceStatus, len(results))
	var ok []sourceResult
	var failedSources []string
	for _, res := range results {
		st := SourceStatus{Dataset: res.dataset}
		if res.err != nil {
			st.Error = res.err.Error()
			failedSources = append(failedSources, string(res.source))
			logger.Warn().Err(res.err).Str("family", fam.Name).Str("source", string(res.source)).Msg("Source unavailable")
		} else {
			st.Records = len(res.records)
			st.Dropped = res.dropped
			st.Cached = res.meta.Cached
			st.FetchedAt = res.meta.FetchedAt
			ok = append(ok, res)
		}
		sources[res.source] = st
	}
	sort.Strings(failedSources)

	if len(ok) == 0 {
		if prev.Usable() {
			stale := *prev
			stale.Status = StatusStale
			stale.Message = StaleMessage
			stale.CheckedAt = now
			stale.Sources = sources
			logger.Warn().Str("family", fam.Name).Time("refreshed_at", prev.RefreshedAt).Msg("Serving cached neighborhood data")
			return &stale
		}
		logger.Error().Str("family", fam.Name).Msg("No neighborhood data available")
		return &FamilyStats{
			Family:        fam.Name,
			Status:        StatusFailed,
			Message:       FailedMessage,
			Since:         since,
			CheckedAt:     now,
			Sources:       sources,
			Neighborhoods: map[neighborhood.ID]NeighborhoodStats{},
			City:          CityStats{Rankings: []Ranking{}, ByCategory: map[classify.Category]int{}},
		}
	}

	var records []NeighborhoodRecord
	for _, res := range ok {
		records = append(records, res.records...)
	}
	stats, city := Aggregate(records, fam, r.normalizer)

	fs := &FamilyStats{
		Family:        fam.Name,
		Status:        StatusFresh,
		Since:         since,
		RefreshedAt:   now,
		CheckedAt:     now,
		Sources:       sources,
		Neighborhoods: stats,
		City:          city,
	}
	if len(failedSources) > 0 {
		fs.Status = StatusPartial
		fs.Message = partialMessage + strings.Join(failedSources, ", ")
	}
	logger.Info().
		Str("family", fam.Name).
		Str("status", string(fs.Status)).
		Int("records", len(records)).
		Int("neighborhoods", len(stats)).
		Msg("Family refreshed")
	return fs
}
