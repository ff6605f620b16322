// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

/*
Package api provides the HTTP REST API for Resonate.

Routes are served by a Chi router with a shared middleware stack:
request ids carried into the zerolog context, real-IP extraction, panic
recovery, CORS, per-IP rate limiting (go-chi/httprate), security headers
and Prometheus request metrics.

Endpoints:

  - GET  /api/v1/health/live: liveness probe
  - GET  /api/v1/health/ready: ready once neighborhood data has loaded
  - GET  /api/v1/neighborhoods: reference table with effective denominators
  - GET  /api/v1/neighborhoods/stats/{family}: safety, service_requests or evictions
  - GET  /api/v1/neighborhoods/{id}/profile: every family for one neighborhood
  - POST /api/v1/neighborhoods/refresh: run a refresh cycle now
  - POST /api/v1/match: score publishers for a campaign in the body
  - GET  /api/v1/campaigns/{id}/matches?top_n=N: score a stored campaign
  - GET  /metrics: Prometheus exposition

Every JSON response uses the APIResponse envelope. Statistics responses
carry meta.freshness so clients can show the stale-data banner:

	{
	  "success": true,
	  "data": {...},
	  "meta": {
	    "request_id": "...",
	    "timestamp": "...",
	    "freshness": {"status": "stale", "message": "unable to refresh neighborhood data, showing cached results", ...}
	  }
	}

Usage:

	handler := api.NewHandler(normalizer, refresher, matchService, api.DefaultHandlerConfig())
	router := api.NewRouter(handler, api.MiddlewareConfigFrom(cfg.Security))
	srv := &http.Server{Addr: addr, Handler: router.SetupChi()}
*/
package api
