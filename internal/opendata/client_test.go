// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package opendata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/config"
)

const testDataset = "abcd-1234"

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	client *Client
	clock  *cache.ManualClock
	calls  *atomic.Int32
}

func newTestEnv(t *testing.T, handler http.HandlerFunc, opts ...Option) *testEnv {
	t.Helper()

	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.OpenDataConfig{
		BaseURL:  srv.URL,
		AppToken: "token-123",
		Timeout:  200 * time.Millisecond,
		CacheTTL: 15 * time.Minute,
		PageSize: MaxPageSize,
	}
	clock := cache.NewManualClock(epoch)
	opts = append([]Option{WithClock(clock), WithLogger(zerolog.Nop())}, opts...)
	c := NewClient(cfg, cache.New(cfg.CacheTTL, cache.WithClock(clock)), opts...)
	return &testEnv{client: c, clock: clock, calls: calls}
}

func jsonRows(n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"incident_id":"%d","analysis_neighborhood":"Mission"}`, i)
	}
	return out + "]"
}

func TestFetchCachesWithinTTL(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(jsonRows(3)))
	})
	ctx := context.Background()

	first, err := env.client.Fetch(ctx, testDataset, Query{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if first.Meta.Cached {
		t.Error("Expected first fetch not to be cached")
	}
	if first.Meta.RecordCount != 3 {
		t.Errorf("Expected 3 records, got %d", first.Meta.RecordCount)
	}
	if !first.Meta.FetchedAt.Equal(epoch) {
		t.Errorf("Expected FetchedAt %v, got %v", epoch, first.Meta.FetchedAt)
	}

	env.clock.Advance(10 * time.Minute)
	second, err := env.client.Fetch(ctx, testDataset, Query{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !second.Meta.Cached {
		t.Error("Expected second fetch to be served from cache")
	}
	if !second.Meta.FetchedAt.Equal(epoch) {
		t.Errorf("Expected cached FetchedAt to keep original time, got %v", second.Meta.FetchedAt)
	}
	if got := env.calls.Load(); got != 1 {
		t.Errorf("Expected 1 upstream call, got %d", got)
	}

	env.clock.Advance(5 * time.Minute)
	third, err := env.client.Fetch(ctx, testDataset, Query{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if third.Meta.Cached {
		t.Error("Expected entry to expire at the TTL")
	}
	if got := env.calls.Load(); got != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", got)
	}
}

func TestFetchFailureIsNotCachedAndNotStale(t *testing.T) {
	var failing atomic.Bool
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		if failing.Load() {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(jsonRows(1)))
	})
	ctx := context.Background()

	if _, err := env.client.Fetch(ctx, testDataset, Query{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Past the TTL the old entry must not be served even though upstream is down.
	env.clock.Advance(16 * time.Minute)
	failing.Store(true)

	_, err := env.client.Fetch(ctx, testDataset, Query{})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
	var sue *SourceUnavailableError
	if !errors.As(err, &sue) {
		t.Fatalf("Expected *SourceUnavailableError, got %T", err)
	}
	if sue.Reason != ReasonStatus || sue.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status/502, got %s/%d", sue.Reason, sue.StatusCode)
	}

	failing.Store(false)
	res, err := env.client.Fetch(ctx, testDataset, Query{})
	if err != nil {
		t.Fatalf("Fetch after recovery: %v", err)
	}
	if res.Meta.Cached {
		t.Error("Expected a fresh fetch after a failure, not a cached one")
	}
	if got := env.calls.Load(); got != 3 {
		t.Errorf("Expected 3 upstream calls, got %d", got)
	}
}

func TestFetchTimeout(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	start := time.Now()
	_, err := env.client.Fetch(context.Background(), testDataset, Query{})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
	var sue *SourceUnavailableError
	if errors.As(err, &sue) && sue.Reason != ReasonTimeout {
		t.Errorf("Expected timeout reason, got %s", sue.Reason)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected fetch to give up near the timeout, took %v", elapsed)
	}
}

func TestFetchDecodeError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	})

	_, err := env.client.Fetch(context.Background(), testDataset, Query{})
	var sue *SourceUnavailableError
	if !errors.As(err, &sue) || sue.Reason != ReasonDecode {
		t.Fatalf("Expected decode failure, got %v", err)
	}
}

func TestFetchSendsSoQLParameters(t *testing.T) {
	var got http.Header
	var params map[string]string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		params = map[string]string{}
		for k := range r.URL.Query() {
			params[k] = r.URL.Query().Get(k)
		}
		if r.URL.Path != "/resource/"+testDataset+".json" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("[]"))
	})

	_, err := env.client.Fetch(context.Background(), testDataset, Query{
		Where:  "incident_datetime >= '2026-01-01T00:00:00'",
		Select: "incident_id",
		Order:  "incident_id",
		Limit:  120000,
		Offset: 10,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got.Get("X-App-Token") != "token-123" {
		t.Errorf("Expected app token header, got %q", got.Get("X-App-Token"))
	}
	if params["$limit"] != strconv.Itoa(MaxPageSize) {
		t.Errorf("Expected $limit clamped to %d, got %s", MaxPageSize, params["$limit"])
	}
	if params["$offset"] != "10" {
		t.Errorf("Expected $offset 10, got %s", params["$offset"])
	}
	if params["$where"] != "incident_datetime >= '2026-01-01T00:00:00'" {
		t.Errorf("Unexpected $where %q", params["$where"])
	}
}

func TestFetchAllPaginatesWithOffset(t *testing.T) {
	var offsets []string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("$offset"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("$offset"))
		remaining := 5 - offset
		if remaining > 2 {
			remaining = 2
		}
		_, _ = w.Write([]byte(jsonRows(remaining)))
	})
	env.client.pageSize = 2

	res, err := env.client.FetchAll(context.Background(), testDataset, Query{}, 0)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if res.Meta.RecordCount != 5 {
		t.Errorf("Expected 5 records, got %d", res.Meta.RecordCount)
	}
	want := []string{"", "2", "4"}
	if fmt.Sprint(offsets) != fmt.Sprint(want) {
		t.Errorf("Expected offsets %v, got %v", want, offsets)
	}
}

func TestFetchAllRespectsMaxRecords(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("$limit"))
		_, _ = w.Write([]byte(jsonRows(limit)))
	})
	env.client.pageSize = 4

	res, err := env.client.FetchAll(context.Background(), testDataset, Query{}, 6)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if res.Meta.RecordCount != 6 {
		t.Errorf("Expected 6 records, got %d", res.Meta.RecordCount)
	}
}

func TestFetchRejectsInvalidDataset(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	for _, id := range []string{"", "../../etc", "ABCD-1234x"} {
		if _, err := env.client.Fetch(context.Background(), id, Query{}); !errors.Is(err, ErrInvalidDataset) {
			t.Errorf("Fetch(%q): expected ErrInvalidDataset, got %v", id, err)
		}
	}
	if env.calls.Load() != 0 {
		t.Error("Expected no upstream calls for invalid ids")
	}
}

func TestCircuitOpensAfterFailures(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithBreakerSettings(BreakerSettings{
		MinRequests:  2,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		Timeout:      time.Minute,
	}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.client.Fetch(ctx, testDataset, Query{}); err == nil {
			t.Fatal("Expected failure")
		}
	}

	_, err := env.client.Fetch(ctx, testDataset, Query{})
	var sue *SourceUnavailableError
	if !errors.As(err, &sue) || sue.Reason != ReasonCircuitOpen {
		t.Fatalf("Expected circuit_open, got %v", err)
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Error("Expected open circuit to match ErrSourceUnavailable")
	}
	if got := env.calls.Load(); got != 2 {
		t.Errorf("Expected open circuit to short-circuit upstream, got %d calls", got)
	}
}

func TestFetchSharedMissSurvivesCancelledCaller(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		_, _ = w.Write([]byte(jsonRows(2)))
	})
	env.client.timeout = 2 * time.Second
	env.client.httpClient.Timeout = 2 * time.Second

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := env.client.Fetch(firstCtx, testDataset, Query{})
		firstErr <- err
	}()
	<-entered

	type outcome struct {
		res Result
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := env.client.Fetch(context.Background(), testDataset, Query{})
		second <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		var sue *SourceUnavailableError
		if !errors.As(err, &sue) || sue.Reason != ReasonCanceled {
			t.Errorf("Expected the cancelled caller to get a canceled SourceUnavailable, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("Expected the waiting caller to succeed, got %v", got.err)
		}
		if got.res.Meta.RecordCount != 2 {
			t.Errorf("Expected 2 records, got %d", got.res.Meta.RecordCount)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiting caller did not return")
	}

	if got := env.calls.Load(); got != 1 {
		t.Errorf("Expected the callers to share 1 upstream call, got %d", got)
	}
	cached, err := env.client.Fetch(context.Background(), testDataset, Query{})
	if err != nil || !cached.Meta.Cached {
		t.Errorf("Expected the shared result to be cached, got cached=%v err=%v", cached.Meta.Cached, err)
	}
}
