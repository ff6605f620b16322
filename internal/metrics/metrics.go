// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package metrics holds the Prometheus collectors for the civic data
// pipeline, the matching engine and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Open-data client
	OpenDataFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opendata_fetch_duration_seconds",
			Help:    "Duration of upstream open-data fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"dataset"},
	)

	OpenDataFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opendata_fetch_errors_total",
			Help: "Total number of failed open-data fetches",
		},
		[]string{"dataset", "reason"}, // reason: http, status, decode, timeout, circuit_open, rate_limit
	)

	OpenDataRecordsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opendata_records_fetched_total",
			Help: "Total number of records returned by upstream fetches",
		},
		[]string{"dataset"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // opendata, match
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of expired entries removed by the janitor",
		},
		[]string{"cache"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Civic pipeline
	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_records_dropped_total",
			Help: "Records dropped during ingestion",
		},
		[]string{"source", "reason"}, // reason: unmapped_neighborhood
	)

	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "civic_aggregation_duration_seconds",
			Help:    "Time spent aggregating records for one metric family",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"family"},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_refresh_total",
			Help: "Refresh outcomes per metric family",
		},
		[]string{"family", "outcome"}, // fresh, partial, stale, failed
	)

	RefreshLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "civic_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh",
		},
		[]string{"family"},
	)

	// Matching
	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_duration_seconds",
			Help:    "Time to score and rank one candidate pool",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	MatchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_candidates",
			Help:    "Number of candidate publishers per match run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	PublishersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_publishers_skipped_total",
			Help: "Candidates excluded from a match run",
		},
		[]string{"reason"}, // malformed_profile, no_applicable_rates
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordFetch records one upstream fetch. reason is ignored when err is nil.
func RecordFetch(dataset string, duration time.Duration, records int, reason string, err error) {
	OpenDataFetchDuration.WithLabelValues(dataset).Observe(duration.Seconds())
	if err != nil {
		if reason == "" {
			reason = "other"
		}
		OpenDataFetchErrors.WithLabelValues(dataset, reason).Inc()
		return
	}
	OpenDataRecordsFetched.WithLabelValues(dataset).Add(float64(records))
}

// RecordCacheLookup counts a hit or a miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordRefresh records a refresh outcome for a metric family.
func RecordRefresh(family, outcome string) {
	RefreshTotal.WithLabelValues(family, outcome).Inc()
	if outcome == "fresh" || outcome == "partial" {
		RefreshLastSuccess.WithLabelValues(family).Set(float64(time.Now().Unix()))
	}
}

// RecordMatch records one match run.
func RecordMatch(duration time.Duration, candidates int) {
	MatchDuration.Observe(duration.Seconds())
	MatchCandidates.Observe(float64(candidates))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
