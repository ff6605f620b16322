// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/resonate/config.yaml",
	"/etc/resonate/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// MaxPageSize is the provider's hard cap on $limit.
const MaxPageSize = 50000

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		OpenData: OpenDataConfig{
			BaseURL:    "https://data.sfgov.org",
			Timeout:    30 * time.Second,
			CacheTTL:   15 * time.Minute,
			RateLimit:  5,
			RateBurst:  5,
			PageSize:   MaxPageSize,
			MaxRecords: 200000,
			Datasets: DatasetsConfig{
				ServiceRequests: "vw6y-z8j6",
				PoliceIncidents: "wg3w-h783",
				FireIncidents:   "wr8u-xric",
				Evictions:       "5cei-gny5",
			},
		},
		Refresh: RefreshConfig{
			Enabled:   true,
			Interval:  time.Hour,
			OnStartup: true,
			Lookback:  90 * 24 * time.Hour,
		},
		Matching: MatchingConfig{
			Workers:         8,
			ReasonThreshold: 70,
			ResultCacheTTL:  5 * time.Minute,
			DefaultTopN:     20,
			MaxTopN:         100,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with precedence env > file > defaults
// and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"opendata_base_url":    "opendata.base_url",
	"opendata_app_token":   "opendata.app_token",
	"opendata_timeout":     "opendata.timeout",
	"opendata_cache_ttl":   "opendata.cache_ttl",
	"opendata_rate_limit":  "opendata.rate_limit",
	"opendata_rate_burst":  "opendata.rate_burst",
	"opendata_page_size":   "opendata.page_size",
	"opendata_max_records": "opendata.max_records",

	"dataset_service_requests": "opendata.datasets.service_requests",
	"dataset_police_incidents": "opendata.datasets.police_incidents",
	"dataset_fire_incidents":   "opendata.datasets.fire_incidents",
	"dataset_evictions":        "opendata.datasets.evictions",

	"refresh_enabled":    "refresh.enabled",
	"refresh_interval":   "refresh.interval",
	"refresh_on_startup": "refresh.on_startup",
	"refresh_lookback":   "refresh.lookback",

	"match_workers":          "matching.workers",
	"match_reason_threshold": "matching.reason_threshold",
	"match_cache_ttl":        "matching.result_cache_ttl",
	"match_default_top_n":    "matching.default_top_n",
	"match_max_top_n":        "matching.max_top_n",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"seed_publishers_file": "seed.publishers_file",
	"seed_campaigns_file":  "seed.campaigns_file",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unknown variables map to "" and are ignored.
//
//   - HTTP_PORT -> server.port
//   - OPENDATA_APP_TOKEN -> opendata.app_token
//   - MATCH_WORKERS -> matching.workers
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
