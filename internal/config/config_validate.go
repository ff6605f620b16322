// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateOpenData(); err != nil {
		return err
	}
	if err := c.validateRefresh(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateOpenData() error {
	u, err := url.Parse(c.OpenData.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("OPENDATA_BASE_URL must be an http(s) URL, got %q", c.OpenData.BaseURL)
	}
	if c.OpenData.Timeout <= 0 {
		return fmt.Errorf("OPENDATA_TIMEOUT must be positive")
	}
	if c.OpenData.CacheTTL <= 0 {
		return fmt.Errorf("OPENDATA_CACHE_TTL must be positive")
	}
	if c.OpenData.PageSize < 1 || c.OpenData.PageSize > MaxPageSize {
		return fmt.Errorf("OPENDATA_PAGE_SIZE must be between 1 and %d, got %d", MaxPageSize, c.OpenData.PageSize)
	}
	if c.OpenData.MaxRecords < 1 {
		return fmt.Errorf("OPENDATA_MAX_RECORDS must be positive")
	}
	if c.OpenData.RateLimit < 0 {
		return fmt.Errorf("OPENDATA_RATE_LIMIT must not be negative")
	}
	return nil
}

func (c *Config) validateRefresh() error {
	if !c.Refresh.Enabled {
		return nil
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive when refresh is enabled")
	}
	if c.Refresh.Lookback <= 0 {
		return fmt.Errorf("REFRESH_LOOKBACK must be positive")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Workers < 1 {
		return fmt.Errorf("MATCH_WORKERS must be at least 1, got %d", c.Matching.Workers)
	}
	// Neutral sub-scores sit at 50 and carry no overlap to explain.
	if c.Matching.ReasonThreshold <= 50 || c.Matching.ReasonThreshold > 100 {
		return fmt.Errorf("MATCH_REASON_THRESHOLD must be above 50 and at most 100, got %g", c.Matching.ReasonThreshold)
	}
	if c.Matching.DefaultTopN < 1 || c.Matching.DefaultTopN > c.Matching.MaxTopN {
		return fmt.Errorf("MATCH_DEFAULT_TOP_N must be between 1 and MATCH_MAX_TOP_N (%d)", c.Matching.MaxTopN)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled && c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Server.Environment == "production" {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
