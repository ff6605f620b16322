// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package civic

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/resonate/internal/classify"
	"github.com/tomtom215/resonate/internal/metrics"
	"github.com/tomtom215/resonate/internal/neighborhood"
	"github.com/tomtom215/resonate/internal/opendata"
)

// Source names the feed a record came from.
type Source string

const (
	SourcePolice          Source = "police"
	SourceFire            Source = "fire"
	SourceServiceRequests Source = "311"
	SourceEvictions       Source = "evictions"
)

// Drop reasons for the records-dropped counter.
const (
	DropUnmapped = "unmapped_neighborhood"
	DropMissing  = "missing_neighborhood"
)

// maxLoggedNames caps how many distinct unmapped names one batch logs.
const maxLoggedNames = 20

// NeighborhoodRecord is one classified, attributed record. It exists only
// between mapping and aggregation.
type NeighborhoodRecord struct {
	NeighborhoodID neighborhood.ID
	Category       classify.Category
	Source         Source
}

// Mapping converts one typed dataset row into a NeighborhoodRecord.
type Mapping[T any] struct {
	Source       Source
	Neighborhood func(T) string
	Category     func(T) classify.Category
}

// ToRecord attributes row to a canonical neighborhood and classifies it.
// It returns false when the neighborhood name does not map; the caller must
// drop the row.
func (m Mapping[T]) ToRecord(row T, n *neighborhood.Normalizer) (NeighborhoodRecord, bool) {
	id, ok := n.Normalize(m.Neighborhood(row))
	if !ok {
		return NeighborhoodRecord{}, false
	}
	return NeighborhoodRecord{NeighborhoodID: id, Category: m.Category(row), Source: m.Source}, true
}

// MapAll converts rows, dropping and counting those that do not map. Each
// distinct unmapped name is logged once with its count.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (m Mapping[T]) MapAll(rows []T, n *neighborhood.Normalizer, logger zerolog.Logger) ([]NeighborhoodRecord, int) {
	out := make([]NeighborhoodRecord, 0, len(rows))
	unmapped := make(map[string]int)
	missing := 0

	for _, row := range rows {
		if rec, ok := m.ToRecord(row, n); ok {
			out = append(out, rec)
			continue
		}
		raw := strings.TrimSpace(m.Neighborhood(row))
		if raw == "" {
			missing++
			continue
		}
		unmapped[raw]++
	}

	if missing > 0 {
		metrics.RecordsDropped.WithLabelValues(string(m.Source), DropMissing).Add(float64(missing))
		logger.Debug().Str("source", string(m.Source)).Int("count", missing).Msg("Dropped records without a neighborhood")
	}

	dropped := missing
	if len(unmapped) > 0 {
		names := make([]string, 0, len(unmapped))
		for name, c := range unmapped {
			names = append(names, name)
			dropped += c
		}
		sort.Strings(names)
		metrics.RecordsDropped.WithLabelValues(string(m.Source), DropUnmapped).Add(float64(dropped - missing))

		for i, name := range names {
			if i == maxLoggedNames {
				logger.Warn().Str("source", string(m.Source)).Int("more", len(names)-i).Msg("Further unmapped neighborhood names omitted")
				break
			}
			logger.Warn().
				Str("source", string(m.Source)).
				Str("neighborhood", name).
				Int("count", unmapped[name]).
				Strs("closest", n.Suggest(name, 3)).
				Msg("Dropping records with unmapped neighborhood")
		}
	}

	return out, dropped
}

// ServiceRequestMapping classifies on the service name, then the subtype
// when the name alone is not specific.
var ServiceRequestMapping = Mapping[opendata.ServiceRequest]{
	Source:       SourceServiceRequests,
	Neighborhood: opendata.ServiceRequest.Neighborhood,
	Category: func(r opendata.ServiceRequest) classify.Category {
		if c := classify.ServiceRequest(r.ServiceName); c != classify.Other {
			return c
		}
		return classify.ServiceRequest(r.ServiceSubtype)
	},
}

// PoliceIncidentMapping classifies on the incident category, falling back
// to the subcategory and description when the category is blank.
var PoliceIncidentMapping = Mapping[opendata.PoliceIncident]{
	Source:       SourcePolice,
	Neighborhood: func(p opendata.PoliceIncident) string { return p.AnalysisNeighborhood },
	Category: func(p opendata.PoliceIncident) classify.Category {
		return classify.Safety(firstNonBlank(p.Category, p.Subcategory, p.Description), classify.SourcePolice)
	},
}

// FireIncidentMapping classifies on the primary situation.
var FireIncidentMapping = Mapping[opendata.FireIncident]{
	Source:       SourceFire,
	Neighborhood: func(f opendata.FireIncident) string { return f.NeighborhoodDistrict },
	Category: func(f opendata.FireIncident) classify.Category {
		return classify.Safety(f.PrimarySituation, classify.SourceFire)
	},
}

// EvictionMapping classifies on the just-cause flags.
var EvictionMapping = Mapping[opendata.EvictionNotice]{
	Source:       SourceEvictions,
	Neighborhood: func(e opendata.EvictionNotice) string { return e.Neighborhood },
	Category:     classify.Eviction,
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
