// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package services adapts long-running components to suture.Service:
//
//   - HTTPServerService: net/http server with graceful shutdown
//   - RefreshService: periodic neighborhood statistics refresh
//   - CacheJanitorService: expiry sweeps for the in-memory caches
//
// Refresh event listeners (events.Listener) implement suture.Service
// directly and need no wrapper.
package services
