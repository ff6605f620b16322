// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package civic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/classify"
	"github.com/tomtom215/resonate/internal/config"
	"github.com/tomtom215/resonate/internal/events"
	"github.com/tomtom215/resonate/internal/neighborhood"
	"github.com/tomtom215/resonate/internal/opendata"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var testDatasets = config.DatasetsConfig{
	ServiceRequests: "serv-0311",
	PoliceIncidents: "poli-0001",
	FireIncidents:   "fire-0001",
	Evictions:       "evic-0001",
}

// fakeFetcher serves canned rows per dataset and fails datasets listed in
// down.
type fakeFetcher struct {
	mu      sync.Mutex
	rows    map[string][]any
	down    map[string]bool
	queries map[string]opendata.Query
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		rows:    make(map[string][]any),
		down:    make(map[string]bool),
		queries: make(map[string]opendata.Query),
	}
}

func (f *fakeFetcher) setDown(id string, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down[id] = down
}

func (f *fakeFetcher) Fetch(ctx context.Context, id string, q opendata.Query) (opendata.Result, error) {
	return f.FetchAll(ctx, id, q, 0)
}

func (f *fakeFetcher) FetchAll(_ context.Context, id string, q opendata.Query, _ int) (opendata.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries[id] = q
	if f.down[id] {
		return opendata.Result{}, &opendata.SourceUnavailableError{
			Dataset: id, Reason: opendata.ReasonStatus, StatusCode: 503, Err: errors.New("upstream down"),
		}
	}
	var out []json.RawMessage
	for _, row := range f.rows[id] {
		data, err := json.Marshal(row)
		if err != nil {
			return opendata.Result{}, err
		}
		out = append(out, data)
	}
	return opendata.Result{Records: out, Meta: opendata.Meta{FetchedAt: epoch, RecordCount: len(out)}}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.StatsRefreshed
}

func (r *recordingNotifier) PublishStatsRefreshed(_ context.Context, ev events.StatsRefreshed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func seededFetcher() *fakeFetcher {
	f := newFakeFetcher()
	f.rows[testDatasets.PoliceIncidents] = []any{
		opendata.PoliceIncident{Category: "Assault", AnalysisNeighborhood: "Mission"},
		opendata.PoliceIncident{Category: "Larceny Theft", AnalysisNeighborhood: "Mission"},
		opendata.PoliceIncident{Category: "Burglary", AnalysisNeighborhood: "Atlantis"},
	}
	f.rows[testDatasets.FireIncidents] = []any{
		opendata.FireIncident{PrimarySituation: "Medical assist", NeighborhoodDistrict: "Tenderloin"},
	}
	f.rows[testDatasets.ServiceRequests] = []any{
		opendata.ServiceRequest{ServiceName: "Graffiti", AnalysisNeighborhood: "Castro/Upper Market"},
	}
	f.rows[testDatasets.Evictions] = []any{
		opendata.EvictionNotice{Neighborhood: "Mission", NonPayment: true},
	}
	return f
}

func newTestRefresher(f opendata.Fetcher, opts ...RefresherOption) *Refresher {
	opts = append([]RefresherOption{
		WithRefreshClock(cache.NewManualClock(epoch)),
		WithRefreshLogger(zerolog.Nop()),
	}, opts...)
	return NewRefresher(f, neighborhood.New(), RefresherConfig{
		Datasets:   testDatasets,
		Lookback:   24 * time.Hour,
		MaxRecords: 1000,
	}, opts...)
}

func TestRefreshBuildsAllFamilies(t *testing.T) {
	t.Parallel()
	f := seededFetcher()
	notifier := &recordingNotifier{}
	r := newTestRefresher(f, WithNotifier(notifier))

	if r.Snapshot() != nil {
		t.Fatal("Expected no snapshot before first refresh")
	}
	if _, err := r.Family("safety"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot, got %v", err)
	}

	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap != r.Snapshot() {
		t.Error("Expected returned snapshot to be published")
	}

	safety, err := r.Family("safety")
	if err != nil {
		t.Fatalf("Family(safety): %v", err)
	}
	if safety.Status != StatusFresh {
		t.Errorf("Expected fresh, got %s", safety.Status)
	}
	if safety.City.Total != 3 {
		t.Errorf("Expected 3 safety records (police + fire, unmapped dropped), got %d", safety.City.Total)
	}
	if safety.Neighborhoods["tenderloin"].TopCategories[0].Category != classify.MedicalResponse {
		t.Errorf("Expected tenderloin medical response, got %+v", safety.Neighborhoods["tenderloin"])
	}
	if safety.Sources[SourcePolice].Dropped != 1 {
		t.Errorf("Expected 1 dropped police record, got %d", safety.Sources[SourcePolice].Dropped)
	}
	windowStart := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !safety.Since.Equal(windowStart) {
		t.Errorf("Expected since %v, got %v", windowStart, safety.Since)
	}

	if snap.Family("service_requests").Neighborhoods["castro_upper_market"].Total != 1 {
		t.Error("Expected one castro service request")
	}
	ev := snap.Family("evictions").Neighborhoods["mission"]
	if ev.Denominator != DenominatorHousingUnits {
		t.Errorf("Expected eviction stats over housing units, got %s", ev.Denominator)
	}

	q := f.queries[testDatasets.PoliceIncidents]
	if q.Where != "incident_datetime >= '2026-02-28T00:00:00'" {
		t.Errorf("Unexpected where clause: %q", q.Where)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(notifier.events))
	}
	if notifier.events[0].Cycle != snap.Cycle || notifier.events[0].Families["safety"] != "fresh" {
		t.Errorf("Unexpected event: %+v", notifier.events[0])
	}
}

func TestRefreshPartialWhenOneSourceFails(t *testing.T) {
	t.Parallel()
	f := seededFetcher()
	f.setDown(testDatasets.FireIncidents, true)
	r := newTestRefresher(f)

	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	safety, err := r.Family("safety")
	if err != nil {
		t.Fatalf("Family: %v", err)
	}
	if safety.Status != StatusPartial {
		t.Errorf("Expected partial, got %s", safety.Status)
	}
	if safety.City.Total != 2 {
		t.Errorf("Expected police records only, got total %d", safety.City.Total)
	}
	if safety.Sources[SourceFire].Error == "" {
		t.Error("Expected the fire source to carry its error")
	}
	if safety.Message == "" {
		t.Error("Expected a partial message")
	}
}

func TestRefreshKeepsPreviousSnapshotWhenFamilyFails(t *testing.T) {
	t.Parallel()
	f := seededFetcher()
	r := newTestRefresher(f)

	first, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	f.setDown(testDatasets.PoliceIncidents, true)
	f.setDown(testDatasets.FireIncidents, true)
	second, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("second Refresh should not fail with a previous snapshot: %v", err)
	}

	safety := second.Family("safety")
	if safety.Status != StatusStale {
		t.Errorf("Expected stale, got %s", safety.Status)
	}
	if safety.Message != StaleMessage {
		t.Errorf("Expected stale message %q, got %q", StaleMessage, safety.Message)
	}
	if safety.City.Total != first.Family("safety").City.Total {
		t.Errorf("Expected cached totals, got %d", safety.City.Total)
	}
	if !safety.RefreshedAt.Equal(first.Family("safety").RefreshedAt) {
		t.Error("Expected stale family to keep its original refreshed_at")
	}
	if first.Family("safety").Status != StatusFresh {
		t.Error("Previous snapshot must not be mutated")
	}
	if second.Family("service_requests").Status != StatusFresh {
		t.Errorf("Expected other families unaffected, got %s", second.Family("service_requests").Status)
	}
}

func TestRefreshFailsWithoutPreviousSnapshot(t *testing.T) {
	t.Parallel()
	f := seededFetcher()
	f.setDown(testDatasets.Evictions, true)
	r := newTestRefresher(f)

	snap, err := r.Refresh(context.Background())
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("Expected ErrRefreshFailed, got %v", err)
	}
	if snap.Family("evictions").Status != StatusFailed {
		t.Errorf("Expected failed, got %s", snap.Family("evictions").Status)
	}
	if _, err := r.Family("evictions"); !errors.Is(err, ErrRefreshFailed) {
		t.Errorf("Expected ErrRefreshFailed from Family, got %v", err)
	}
	if _, err := r.Family("safety"); err != nil {
		t.Errorf("Expected healthy family to stay readable, got %v", err)
	}
}

func TestRefreshSkipsUnconfiguredDatasets(t *testing.T) {
	t.Parallel()
	f := seededFetcher()
	r := NewRefresher(f, neighborhood.New(), RefresherConfig{
		Datasets: config.DatasetsConfig{ServiceRequests: testDatasets.ServiceRequests},
	}, WithRefreshLogger(zerolog.Nop()))

	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(snap.Families) != 1 || snap.Family("service_requests") == nil {
		t.Errorf("Expected only service_requests, got %v", snap.Families)
	}
	if q := f.queries[testDatasets.ServiceRequests]; q.Where != "" {
		t.Errorf("Expected no time filter without lookback, got %q", q.Where)
	}
}

func TestRefreshCancelled(t *testing.T) {
	t.Parallel()
	r := newTestRefresher(seededFetcher())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if r.Snapshot() != nil {
		t.Error("Expected no snapshot from a cancelled cycle")
	}
}

func TestSnapshotProfile(t *testing.T) {
	t.Parallel()
	n := neighborhood.New()
	r := newTestRefresher(seededFetcher())
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	p, ok := snap.Profile("mission", n)
	if !ok {
		t.Fatal("Expected mission profile")
	}
	if p.Neighborhood.Name != "Mission" {
		t.Errorf("Expected Mission, got %q", p.Neighborhood.Name)
	}
	safety := p.Families["safety"]
	if safety.Stats == nil || safety.Stats.Total != 2 || safety.Rank != 1 {
		t.Errorf("Unexpected safety profile: %+v", safety)
	}
	svc := p.Families["service_requests"]
	if svc.Stats != nil || svc.Rank != 0 {
		t.Errorf("Expected no service requests for mission, got %+v", svc)
	}

	if _, ok := snap.Profile("atlantis", n); ok {
		t.Error("Expected unknown neighborhood to have no profile")
	}

	var empty *Snapshot
	p, ok = empty.Profile("mission", n)
	if !ok || len(p.Families) != 0 {
		t.Errorf("Expected bare profile before first refresh, got %+v", p)
	}
}
