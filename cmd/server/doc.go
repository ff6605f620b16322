// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

/*
Package main is the entry point for the Resonate server.

Resonate matches advertiser campaigns with community media publishers and
serves neighborhood-level civic statistics built from municipal open data.

# Application Architecture

	RootSupervisor ("resonate")
	├── IngestSupervisor ("ingest-layer")
	│   ├── RefreshService (open-data refresh loop, if REFRESH_ENABLED)
	│   └── CacheJanitorService (open-data and match result caches)
	├── EventsSupervisor ("events-layer")
	│   └── events.Listener (clears match cache after a refresh)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Initialization order:

 1. Configuration: Koanf v2, defaults < config.yaml < environment
 2. Logging: zerolog, with suture events routed through an slog adapter
 3. Open-data client: cached, rate-limited, behind a circuit breaker
 4. Civic refresher: publishes snapshots and refresh events
 5. Audience store: seeded from SEED_PUBLISHERS_FILE and SEED_CAMPAIGNS_FILE
 6. Matching engine and service
 7. Chi router and HTTP server

# Signal Handling

SIGINT and SIGTERM cancel the root context. Each service gets the
configured shutdown timeout; services that miss it are logged.
*/
package main
