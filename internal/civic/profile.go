// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package civic

import (
	"github.com/tomtom215/resonate/internal/neighborhood"
)

// FamilyProfile is one family's view of a single neighborhood.
type FamilyProfile struct {
	Status   Status             `json:"status"`
	Stats    *NeighborhoodStats `json:"stats,omitempty"` // nil when the neighborhood had no records
	Rank     int                `json:"rank,omitempty"`
	Ranked   int                `json:"ranked"`
	CityRate float64            `json:"city_average_rate"`
}

// Profile combines every family for one neighborhood.
type Profile struct {
	Neighborhood neighborhood.Neighborhood `json:"neighborhood"`
	Estimated    bool                      `json:"population_estimated"`
	Families     map[string]FamilyProfile  `json:"families"`
}

// Profile builds the combined view of id from the snapshot. Failed
// families are omitted.
func (s *Snapshot) Profile(id neighborhood.ID, n *neighborhood.Normalizer) (Profile, bool) {
	row, ok := n.Get(id)
	if !ok {
		return Profile{}, false
	}
	p := Profile{
		Neighborhood: row,
		Estimated:    n.PopulationEstimated(id),
		Families:     make(map[string]FamilyProfile),
	}
	if s == nil {
		return p, true
	}

	for name, fs := range s.Families {
		if !fs.Usable() {
			continue
		}
		fp := FamilyProfile{
			Status:   fs.Status,
			Ranked:   len(fs.City.Rankings),
			CityRate: fs.City.AverageRate,
		}
		if st, ok := fs.Neighborhoods[id]; ok {
			fp.Stats = &st
			fp.Rank = fs.City.Rank(id)
		}
		p.Families[name] = fp
	}
	return p, true
}
