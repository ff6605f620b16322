// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package main

import (
	"fmt"

	"github.com/tomtom215/resonate/internal/api"
	"github.com/tomtom215/resonate/internal/audience"
	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/civic"
	"github.com/tomtom215/resonate/internal/config"
	"github.com/tomtom215/resonate/internal/events"
	"github.com/tomtom215/resonate/internal/logging"
	"github.com/tomtom215/resonate/internal/matching"
	"github.com/tomtom215/resonate/internal/neighborhood"
	"github.com/tomtom215/resonate/internal/opendata"
)

// eventBufferSize bounds undelivered refresh events per subscriber.
const eventBufferSize = 64

// application holds the wired components main hands to the supervisor.
type application struct {
	bus           *events.Bus
	opendataCache *cache.Cache
	matchCache    *cache.Cache
	refresher     *civic.Refresher
	store         *audience.Store
	matches       *matching.Service
	router        *api.Router
}

// wire builds every component from configuration. Nothing is started.
func wire(cfg *config.Config) (*application, error) {
	normalizer := neighborhood.New()

	eventsLogger := logging.WithComponent("events")
	bus := events.NewBus(eventBufferSize, events.NewZerologAdapter(&eventsLogger))

	opendataCache := cache.New(cfg.OpenData.CacheTTL)
	client := opendata.NewClient(&cfg.OpenData, opendataCache, opendata.WithLogger(logging.WithComponent("opendata")))

	refresher := civic.NewRefresher(client, normalizer, civic.NewRefresherConfig(cfg),
		civic.WithNotifier(bus),
		civic.WithRefreshLogger(logging.WithComponent("civic")),
	)

	store := audience.NewStore()
	for _, path := range []string{cfg.Seed.PublishersFile, cfg.Seed.CampaignsFile} {
		if path == "" {
			continue
		}
		publishers, campaigns, err := store.LoadSeedFile(path)
		if err != nil {
			return nil, fmt.Errorf("load seed data: %w", err)
		}
		logging.Info().Str("file", path).Int("publishers", publishers).Int("campaigns", campaigns).Msg("Loaded seed data")
	}

	engine, err := matching.NewEngine(matching.Config{
		Workers:         cfg.Matching.Workers,
		ReasonThreshold: cfg.Matching.ReasonThreshold,
	}, normalizer,
		matching.WithStats(refresher),
		matching.WithLogger(logging.WithComponent("matching")),
	)
	if err != nil {
		return nil, err
	}

	matchCache := cache.New(cfg.Matching.ResultCacheTTL)
	matches := matching.NewService(engine, store, matchCache, matching.ServiceConfig{
		ResultCacheTTL: cfg.Matching.ResultCacheTTL,
		DefaultTopN:    cfg.Matching.DefaultTopN,
		MaxTopN:        cfg.Matching.MaxTopN,
	})

	handler := api.NewHandler(normalizer, refresher, matches, api.HandlerConfig{
		MaxBodyBytes: 1 << 20,
		Version:      version,
	})

	return &application{
		bus:           bus,
		opendataCache: opendataCache,
		matchCache:    matchCache,
		refresher:     refresher,
		store:         store,
		matches:       matches,
		router:        api.NewRouter(handler, api.MiddlewareConfigFrom(cfg.Security)),
	}, nil
}
