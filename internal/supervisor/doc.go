// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

/*
Package supervisor provides process supervision for Resonate using suture v4.

	RootSupervisor ("resonate")
	├── IngestSupervisor ("ingest-layer")
	│   ├── RefreshService
	│   └── CacheJanitorService
	├── EventsSupervisor ("events-layer")
	│   └── events.Listener (match cache invalidation)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. Each layer counts failures
independently, so an upstream outage that crashes the refresh loop does
not take the API down. Supervisor events are logged through sutureslog
into the zerolog pipeline (logging.NewSlogLogger).

Usage:

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIngestService(services.NewRefreshService(refresher, refreshCfg, logger))
	tree.AddEventsService(listener)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	err := tree.Serve(ctx)
*/
package supervisor
