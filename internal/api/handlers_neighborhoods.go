// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/resonate/internal/civic"
	"github.com/tomtom215/resonate/internal/logging"
	"github.com/tomtom215/resonate/internal/neighborhood"
)

// NeighborhoodSummary is one row of the neighborhood list.
type NeighborhoodSummary struct {
	neighborhood.Neighborhood
	PopulationEstimated   bool `json:"population_estimated"`
	HousingUnitsEstimated bool `json:"housing_units_estimated"`
}

// RefreshSummary reports the outcome of a manual refresh.
type RefreshSummary struct {
	Cycle     string            `json:"cycle"`
	UpdatedAt time.Time         `json:"updated_at"`
	Families  map[string]string `json:"families"`
	Messages  map[string]string `json:"messages,omitempty"`
}

// ListNeighborhoods returns the reference table with effective
// denominators.
func (h *Handler) ListNeighborhoods(w http.ResponseWriter, r *http.Request) {
	all := h.normalizer.All()
	out := make([]NeighborhoodSummary, 0, len(all))
	for _, n := range all {
		row := NeighborhoodSummary{
			Neighborhood:          n,
			PopulationEstimated:   h.normalizer.PopulationEstimated(n.ID),
			HousingUnitsEstimated: h.normalizer.HousingUnitsEstimated(n.ID),
		}
		row.Population = h.normalizer.Population(n.ID)
		row.HousingUnits = h.normalizer.HousingUnits(n.ID)
		out = append(out, row)
	}
	NewResponseWriter(w, r).Success(out)
}

// FamilyStats returns the latest statistics for one metric family.
func (h *Handler) FamilyStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name := chi.URLParam(r, "family")
	if _, ok := civic.FamilyByName(name); !ok {
		names := make([]string, 0, len(civic.Families()))
		for _, f := range civic.Families() {
			names = append(names, f.Name)
		}
		rw.NotFoundWithDetails("Unknown statistics family", map[string]any{
			"family":    sanitizeLogValue(name),
			"available": names,
		})
		return
	}

	fs, err := h.stats.Family(name)
	switch {
	case errors.Is(err, civic.ErrNoSnapshot):
		rw.ServiceUnavailable("Neighborhood data not yet loaded")
		return
	case errors.Is(err, civic.ErrRefreshFailed):
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, civic.FailedMessage, map[string]any{
			"family":  name,
			"sources": fs.Sources,
		})
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Str("family", name).Msg("Failed to read family stats")
		rw.InternalError("Failed to read neighborhood statistics")
		return
	}

	rw.SuccessWithMeta(fs, &APIMeta{Freshness: freshnessOf(fs)})
}

// NeighborhoodProfile returns every family's view of one neighborhood.
// The path parameter may be an id, display name or alias.
func (h *Handler) NeighborhoodProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	raw := chi.URLParam(r, "id")

	id, err := h.normalizer.Resolve(raw)
	if err != nil {
		var unmappable *neighborhood.UnmappableError
		details := map[string]any{"neighborhood": sanitizeLogValue(raw)}
		if errors.As(err, &unmappable) && len(unmappable.Suggestions) > 0 {
			details["suggestions"] = unmappable.Suggestions
		}
		rw.NotFoundWithDetails("Unknown neighborhood", details)
		return
	}

	snap := h.stats.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("Neighborhood data not yet loaded")
		return
	}
	profile, _ := snap.Profile(id, h.normalizer)

	meta := &APIMeta{}
	if stale := staleFamily(snap); stale != nil {
		meta.Freshness = freshnessOf(stale)
	} else {
		meta.Freshness = &Freshness{
			Status:      string(civic.StatusFresh),
			RefreshedAt: snap.UpdatedAt,
			CheckedAt:   snap.UpdatedAt,
		}
	}
	rw.SuccessWithMeta(profile, meta)
}

// RefreshNeighborhoods runs one refresh cycle synchronously.
func (h *Handler) RefreshNeighborhoods(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RefreshTimeout)
	defer cancel()

	snap, err := h.stats.Refresh(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		rw.ServiceUnavailable("Refresh did not complete in time")
		return
	case errors.Is(err, civic.ErrRefreshFailed):
		rw.ExternalServiceError("open-data", err, summarize(snap))
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Refresh failed")
		rw.InternalError("Refresh failed")
		return
	}
	rw.Success(summarize(snap))
}

func summarize(snap *civic.Snapshot) *RefreshSummary {
	if snap == nil {
		return nil
	}
	s := &RefreshSummary{
		Cycle:     snap.Cycle,
		UpdatedAt: snap.UpdatedAt,
		Families:  make(map[string]string, len(snap.Families)),
	}
	for name, fs := range snap.Families {
		s.Families[name] = string(fs.Status)
		if fs.Message != "" {
			if s.Messages == nil {
				s.Messages = make(map[string]string)
			}
			s.Messages[name] = fs.Message
		}
	}
	return s
}

func freshnessOf(fs *civic.FamilyStats) *Freshness {
	return &Freshness{
		Status:      string(fs.Status),
		Message:     fs.Message,
		RefreshedAt: fs.RefreshedAt,
		CheckedAt:   fs.CheckedAt,
	}
}

// staleFamily returns the oldest non-fresh usable family, if any.
func staleFamily(snap *civic.Snapshot) *civic.FamilyStats {
	var worst *civic.FamilyStats
	for _, f := range civic.Families() {
		fs := snap.Family(f.Name)
		if !fs.Usable() || fs.Status == civic.StatusFresh {
			continue
		}
		if worst == nil || fs.RefreshedAt.Before(worst.RefreshedAt) {
			worst = fs
		}
	}
	return worst
}
