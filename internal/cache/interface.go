// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package cache provides the shared TTL cache used for open-data responses
// and computed match results.
package cache

import "time"

// Cacher is the subset of Cache used by consumers. The open-data client and
// the match service depend on this rather than on *Cache.
type Cacher interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	SetWithTTL(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
	GetStats() Stats
	HitRate() float64
}

// Sweeper is implemented by caches that support explicit expiry sweeps.
type Sweeper interface {
	Cleanup() int
}

var (
	_ Cacher  = (*Cache)(nil)
	_ Sweeper = (*Cache)(nil)
)
