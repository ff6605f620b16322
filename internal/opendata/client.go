// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package opendata fetches municipal open-data datasets over the SoQL HTTP
// interface.
//
// Responses are cached for a fixed TTL. A cached entry is served only while
// it is fresh; past the TTL it is treated as absent. Upstream failures
// surface as ErrSourceUnavailable and are never papered over with stale data.
package opendata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/config"
	"github.com/tomtom215/resonate/internal/metrics"
)

const maxErrorBodySize = 64 * 1024

// Meta describes where a Result came from.
type Meta struct {
	FetchedAt   time.Time `json:"fetched_at"`
	RecordCount int       `json:"record_count"`
	Cached      bool      `json:"cached"`
}

// Result is one page of raw dataset records.
type Result struct {
	Records []json.RawMessage
	Meta    Meta
}

// Fetcher is the read side of the client, accepted by consumers so they can
// be tested against fakes.
type Fetcher interface {
	Fetch(ctx context.Context, datasetID string, q Query) (Result, error)
	FetchAll(ctx context.Context, datasetID string, q Query, maxRecords int) (Result, error)
}

// cachedPage is what the cache stores. It is built completely before Set.
type cachedPage struct {
	records   []json.RawMessage
	fetchedAt time.Time
}

// Client is a SoQL client with caching, rate limiting and a circuit breaker.
type Client struct {
	baseURL    string
	appToken   string
	timeout    time.Duration
	pageSize   int
	httpClient *http.Client
	cache      cache.Cacher
	clock      cache.Clock
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]json.RawMessage]
	breakerKey string
	group      singleflight.Group
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	clock      cache.Clock
	logger     *zerolog.Logger
	breaker    BreakerSettings
}

// WithHTTPClient overrides the HTTP client. Its Timeout is left alone.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithClock sets the clock used for FetchedAt stamps.
func WithClock(c cache.Clock) Option {
	return func(o *clientOptions) { o.clock = c }
}

// WithLogger sets the client logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) { o.logger = &l }
}

// WithBreakerSettings overrides the circuit breaker thresholds.
func WithBreakerSettings(s BreakerSettings) Option {
	return func(o *clientOptions) { o.breaker = s }
}

// NewClient builds a client for cfg. The cache is shared with the caller so
// the janitor can sweep it; pass cache.New(cfg.CacheTTL) when in doubt.
func NewClient(cfg *config.OpenDataConfig, c cache.Cacher, opts ...Option) *Client {
	o := clientOptions{clock: cache.SystemClock, breaker: DefaultBreakerSettings()}
	for _, opt := range opts {
		opt(&o)
	}

	logger := zerolog.Nop()
	if o.logger != nil {
		logger = *o.logger
	}
	logger = logger.With().Str("component", "opendata").Logger()

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if cfg.RateBurst > 0 {
			burst = cfg.RateBurst
		}
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	const breakerName = "opendata"
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appToken:   cfg.AppToken,
		timeout:    cfg.Timeout,
		pageSize:   pageSize,
		httpClient: hc,
		cache:      c,
		clock:      o.clock,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    newBreaker(breakerName, o.breaker, logger),
		breakerKey: breakerName,
		logger:     logger,
	}
}

// Fetch returns one page of records for datasetID.
//
// A fresh cache entry is returned with Meta.Cached set. On a miss exactly one
// upstream attempt is made; concurrent identical misses share it. Only
// successful responses are cached.
func (c *Client) Fetch(ctx context.Context, datasetID string, q Query) (Result, error) {
	if !ValidDatasetID(datasetID) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidDataset, datasetID)
	}
	q = q.Normalized()
	key := CacheKey(datasetID, q)

	if v, ok := c.cache.Get(key); ok {
		if page, ok := v.(*cachedPage); ok {
			metrics.RecordCacheLookup("opendata", true)
			return Result{
				Records: page.records,
				Meta:    Meta{FetchedAt: page.fetchedAt, RecordCount: len(page.records), Cached: true},
			}, nil
		}
	}
	metrics.RecordCacheLookup("opendata", false)

	// The shared fetch outlives any single caller; get bounds it with the
	// client timeout.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		start := time.Now()
		records, err := c.breaker.Execute(func() ([]json.RawMessage, error) {
			return c.get(shared, datasetID, q)
		})
		recordBreakerResult(c.breakerKey, err)

		if err != nil {
			var sue *SourceUnavailableError
			if !errors.As(err, &sue) {
				sue = unavailable(datasetID, ReasonCircuitOpen, 0, err)
			}
			metrics.RecordFetch(datasetID, time.Since(start), 0, sue.Reason, sue)
			return nil, sue
		}

		page := &cachedPage{records: records, fetchedAt: c.clock.Now()}
		c.cache.Set(key, page)
		metrics.RecordFetch(datasetID, time.Since(start), len(records), "", nil)
		return page, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		reason := ReasonCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		return Result{}, unavailable(datasetID, reason, 0, ctx.Err())
	}
	if res.Err != nil {
		c.logger.Warn().Err(res.Err).Str("dataset", datasetID).Msg("Open-data fetch failed")
		return Result{}, res.Err
	}

	page := res.Val.(*cachedPage)
	return Result{
		Records: page.records,
		Meta:    Meta{FetchedAt: page.fetchedAt, RecordCount: len(page.records)},
	}, nil
}

// FetchAll pages through datasetID with explicit offsets until a short page
// or maxRecords. Without an Order the system :id column keeps pages stable.
// Meta.FetchedAt is the oldest page's fetch time and Cached is true only if
// every page came from the cache.
func (c *Client) FetchAll(ctx context.Context, datasetID string, q Query, maxRecords int) (Result, error) {
	if q.Order == "" {
		q.Order = ":id"
	}
	q.Offset = 0

	var (
		all    []json.RawMessage
		meta   = Meta{Cached: true}
		oldest time.Time
	)
	for {
		remaining := maxRecords - len(all)
		if maxRecords > 0 && remaining <= 0 {
			break
		}
		q.Limit = c.pageSize
		if maxRecords > 0 && remaining < q.Limit {
			q.Limit = remaining
		}

		res, err := c.Fetch(ctx, datasetID, q)
		if err != nil {
			return Result{}, err
		}
		all = append(all, res.Records...)
		meta.Cached = meta.Cached && res.Meta.Cached
		if oldest.IsZero() || res.Meta.FetchedAt.Before(oldest) {
			oldest = res.Meta.FetchedAt
		}

		if len(res.Records) < q.Limit {
			break
		}
		q.Offset += len(res.Records)
	}

	meta.FetchedAt = oldest
	meta.RecordCount = len(all)
	return Result{Records: all, Meta: meta}, nil
}

func (c *Client) get(ctx context.Context, datasetID string, q Query) ([]json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, unavailable(datasetID, ReasonRateLimit, 0, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/resource/%s.json", c.baseURL, datasetID)
	if params := q.Values().Encode(); params != "" {
		endpoint += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, unavailable(datasetID, ReasonHTTP, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reason := ReasonHTTP
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = ReasonTimeout
		}
		return nil, unavailable(datasetID, reason, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, unavailable(datasetID, ReasonStatus, resp.StatusCode, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))))
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		reason := ReasonDecode
		if errors.Is(err, context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		return nil, unavailable(datasetID, reason, 0, fmt.Errorf("decode response: %w", err))
	}
	return records, nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
