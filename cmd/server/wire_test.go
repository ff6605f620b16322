// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/resonate/internal/config"
	"github.com/tomtom215/resonate/internal/events"
)

const seedJSON = `{
  "publishers": [
    {
      "id": "el-tecolote",
      "name": "El Tecolote",
      "audience": {
        "geographic": {"neighborhoods": ["Mission"]},
        "demographic": {"languages": ["spanish", "english"]},
        "verification_level": "verified"
      },
      "rate_card": [{"deliverable": "print_ad", "price": 350}]
    }
  ],
  "campaigns": [
    {"id": "mission-health", "goal": "targeted_outreach", "target_neighborhoods": ["Mission"], "target_languages": ["spanish"]}
  ]
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	seed := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seed, []byte(seedJSON), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SEED_PUBLISHERS_FILE", seed)

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	return cfg
}

func TestWire(t *testing.T) {
	app, err := wire(testConfig(t))
	if err != nil {
		t.Fatalf("wire() error = %v", err)
	}
	defer app.bus.Close()

	if pubs, camps := app.store.Counts(); pubs != 1 || camps != 1 {
		t.Errorf("Expected 1 seeded publisher and campaign, got %d and %d", pubs, camps)
	}

	router := app.router.SetupChi()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected live probe 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/mission-health/matches", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected stored campaign match 200, got %d: %s", w.Code, w.Body.String())
	}

	if err := app.matches.HandleStatsRefreshed(context.Background(), events.StatsRefreshed{Cycle: "c1"}); err != nil {
		t.Errorf("HandleStatsRefreshed() error = %v", err)
	}
}

func TestWire_BadSeedFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed.CampaignsFile = filepath.Join(t.TempDir(), "nope.json")

	if _, err := wire(cfg); err == nil {
		t.Error("Expected an error for a missing seed file")
	}
}
