// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/resonate/internal/config"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// MiddlewareConfigFrom maps security settings onto the Chi middleware
// config.
func MiddlewareConfigFrom(sec config.SecurityConfig) *ChiMiddlewareConfig {
	mw := DefaultChiMiddlewareConfig()
	if len(sec.CORSOrigins) > 0 {
		mw.CORSAllowedOrigins = sec.CORSOrigins
	}
	if sec.RateLimitReqs > 0 {
		mw.RateLimitRequests = sec.RateLimitReqs
	}
	if sec.RateLimitWindow > 0 {
		mw.RateLimitWindow = sec.RateLimitWindow
	}
	mw.RateLimitDisabled = sec.RateLimitDisabled
	return mw
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/neighborhoods", func(r chi.Router) {
			r.Get("/", router.handler.ListNeighborhoods)
			r.Get("/stats/{family}", router.handler.FamilyStats)
			r.Get("/{id}/profile", router.handler.NeighborhoodProfile)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitRefresh)).
				Post("/refresh", router.handler.RefreshNeighborhoods)
		})

		r.With(router.chiMiddleware.RateLimitCustom(RateLimitMatch)).
			Post("/match", router.handler.MatchCampaign)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitMatch)).
			Get("/campaigns/{id}/matches", router.handler.StoredCampaignMatches)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
