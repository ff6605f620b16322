// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package services

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/resonate/internal/cache"
)

// CacheJanitorService sweeps expired entries from named caches. Reads
// already ignore expired entries; the sweep only bounds memory.
type CacheJanitorService struct {
	caches   map[string]cache.Sweeper
	names    []string
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheJanitorService sweeps caches every interval (default 5m).
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCacheJanitorService(caches map[string]cache.Sweeper, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	names := make([]string, 0, len(caches))
	for n := range caches {
		names = append(names, n)
	}
	sort.Strings(names)
	return &CacheJanitorService{
		caches:   caches,
		names:    names,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one pass and returns the number of entries removed.
func (s *CacheJanitorService) Sweep() int {
	total := 0
	for _, n := range s.names {
		removed := s.caches[n].Cleanup()
		if removed > 0 {
			s.logger.Debug().Str("cache", n).Int("removed", removed).Msg("Swept expired cache entries")
		}
		total += removed
	}
	return total
}

// String names the service in supervisor logs.
func (s *CacheJanitorService) String() string {
	return s.name
}
