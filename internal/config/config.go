// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package config loads Resonate's runtime configuration.
//
// Sources are layered with koanf: built-in defaults, then an optional YAML
// file (CONFIG_PATH or ./config.yaml), then environment variables. See
// LoadWithKoanf.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	OpenData OpenDataConfig `koanf:"opendata"`
	Refresh  RefreshConfig  `koanf:"refresh"`
	Matching MatchingConfig `koanf:"matching"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Seed     SeedConfig     `koanf:"seed"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// OpenDataConfig configures the municipal open-data client.
type OpenDataConfig struct {
	BaseURL string `koanf:"base_url"`

	// AppToken is sent as X-App-Token. Optional; raises the upstream quota.
	AppToken string `koanf:"app_token"`

	Timeout  time.Duration `koanf:"timeout"`
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// RateLimit is requests per second to the upstream, 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// PageSize is the $limit used when paging; capped at 50,000.
	PageSize int `koanf:"page_size"`

	// MaxRecords bounds how many rows one dataset refresh may pull.
	MaxRecords int `koanf:"max_records"`

	Datasets DatasetsConfig `koanf:"datasets"`
}

// DatasetsConfig holds upstream dataset identifiers.
type DatasetsConfig struct {
	ServiceRequests string `koanf:"service_requests"`
	PoliceIncidents string `koanf:"police_incidents"`
	FireIncidents   string `koanf:"fire_incidents"`
	Evictions       string `koanf:"evictions"`
}

// RefreshConfig controls the civic statistics refresh loop.
type RefreshConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval"`
	OnStartup bool          `koanf:"on_startup"`

	// Lookback is how far back the refresh window reaches.
	Lookback time.Duration `koanf:"lookback"`
}

// MatchingConfig tunes the matching engine and its result cache.
type MatchingConfig struct {
	Workers         int           `koanf:"workers"`
	ReasonThreshold float64       `koanf:"reason_threshold"`
	ResultCacheTTL  time.Duration `koanf:"result_cache_ttl"`
	DefaultTopN     int           `koanf:"default_top_n"`
	MaxTopN         int           `koanf:"max_top_n"`
}

// SecurityConfig holds CORS and request rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SeedConfig points at JSON files loaded into the audience store at startup.
type SeedConfig struct {
	PublishersFile string `koanf:"publishers_file"`
	CampaignsFile  string `koanf:"campaigns_file"`
}
