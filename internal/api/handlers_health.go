// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package api

import (
	"net/http"
	"sort"
	"time"
)

// LiveStatus is the liveness probe body.
type LiveStatus struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime_seconds"`
}

// ReadyStatus is the readiness probe body.
type ReadyStatus struct {
	Ready       bool              `json:"ready"`
	Cycle       string            `json:"cycle,omitempty"`
	RefreshedAt *time.Time        `json:"refreshed_at,omitempty"`
	Families    map[string]string `json:"families,omitempty"`
	Unavailable []string          `json:"unavailable,omitempty"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	NewResponseWriter(w, r).Success(LiveStatus{
		Status:  "alive",
		Version: h.cfg.Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports ready once a snapshot has been published. Stale
// families still count as ready; failed families are listed.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	rw := NewResponseWriter(w, r)
	snap := h.stats.Snapshot()
	if snap == nil {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Neighborhood data not yet loaded", ReadyStatus{Ready: false})
		return
	}

	status := ReadyStatus{
		Ready:       true,
		Cycle:       snap.Cycle,
		RefreshedAt: &snap.UpdatedAt,
		Families:    make(map[string]string, len(snap.Families)),
	}
	for name, fs := range snap.Families {
		status.Families[name] = string(fs.Status)
		if !fs.Usable() {
			status.Unavailable = append(status.Unavailable, name)
		}
	}
	sort.Strings(status.Unavailable)
	rw.Success(status)
}
