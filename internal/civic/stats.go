// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package civic turns classified open-data records into per-neighborhood
// statistical profiles and a city-wide roll-up.
//
// Aggregation is a pure function of its inputs. The Refresher wraps it with
// the fetch pipeline: it pulls each metric family's sources concurrently,
// maps rows to canonical neighborhoods (dropping names it cannot map),
// aggregates, and publishes an immutable Snapshot.
package civic

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/resonate/internal/classify"
	"github.com/tomtom215/resonate/internal/metrics"
	"github.com/tomtom215/resonate/internal/neighborhood"
)

// MaxTopCategories bounds NeighborhoodStats.TopCategories.
const MaxTopCategories = 5

// Denominator names the base a rate is computed against.
type Denominator string

const (
	DenominatorPopulation   Denominator = "population"
	DenominatorHousingUnits Denominator = "housing_units"
)

// Family is one metric family: a closed category taxonomy plus the
// denominator its rates use.
type Family struct {
	Name        string
	Taxonomy    classify.Taxonomy
	Denominator Denominator
}

// Metric families.
var (
	SafetyFamily = Family{
		Name:        "safety",
		Taxonomy:    classify.SafetyTaxonomy,
		Denominator: DenominatorPopulation,
	}
	ServiceRequestFamily = Family{
		Name:        "service_requests",
		Taxonomy:    classify.ServiceTaxonomy,
		Denominator: DenominatorPopulation,
	}
	EvictionFamily = Family{
		Name:        "evictions",
		Taxonomy:    classify.EvictionTaxonomy,
		Denominator: DenominatorHousingUnits,
	}
)

// Families returns every metric family in display order.
func Families() []Family {
	return []Family{SafetyFamily, ServiceRequestFamily, EvictionFamily}
}

// FamilyByName looks a family up by name.
func FamilyByName(name string) (Family, bool) {
	for _, f := range Families() {
		if f.Name == name {
			return f, true
		}
	}
	return Family{}, false
}

// CategoryCount is one entry of a neighborhood's category breakdown.
type CategoryCount struct {
	Category   classify.Category `json:"category"`
	Label      string            `json:"label"`
	Count      int               `json:"count"`
	Percentage int               `json:"percentage"`
}

// NeighborhoodStats is the profile of one neighborhood for one family.
// Values are never mutated after Aggregate returns them.
type NeighborhoodStats struct {
	NeighborhoodID       neighborhood.ID `json:"neighborhood_id"`
	Name                 string          `json:"name"`
	Total                int             `json:"total"`
	RatePer1000          float64         `json:"rate_per_1000"`
	TopCategories        []CategoryCount `json:"top_categories"`
	SourceBreakdown      map[Source]int  `json:"source_breakdown"`
	Denominator          Denominator     `json:"denominator"`
	DenominatorValue     int             `json:"denominator_value"`
	EstimatedDenominator bool            `json:"estimated_denominator"`
}

// Ranking places one neighborhood in the city ordering.
type Ranking struct {
	NeighborhoodID neighborhood.ID `json:"neighborhood_id"`
	Rank           int             `json:"rank"`
	Rate           float64         `json:"rate"`
}

// CityStats is the city-wide roll-up.
//
// AverageRate is the unweighted mean of neighborhood rates: a neighborhood
// of 3,000 residents counts as much as one of 80,000. WeightedAverageRate is
// total incidents over total denominator.
type CityStats struct {
	Total               int                       `json:"total"`
	AverageRate         float64                   `json:"average_rate"`
	WeightedAverageRate float64                   `json:"weighted_average_rate"`
	Rankings            []Ranking                 `json:"rankings"`
	ByCategory          map[classify.Category]int `json:"by_category"`
}

// Rank returns the rank of id, or 0 when it has no records.
func (c CityStats) Rank(id neighborhood.ID) int {
	for _, r := range c.Rankings {
		if r.NeighborhoodID == id {
			return r.Rank
		}
	}
	return 0
}

type accumulator struct {
	total      int
	categories map[classify.Category]int
	sources    map[Source]int
}

// Aggregate groups records by neighborhood and computes per-neighborhood
// stats and the city roll-up for family. Neighborhoods without records are
// absent from the map. Records with an empty neighborhood id are ignored;
// the mapping step drops them before they get here.
func Aggregate(records []NeighborhoodRecord, family Family, n *neighborhood.Normalizer) (map[neighborhood.ID]NeighborhoodStats, CityStats) {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.WithLabelValues(family.Name).Observe(time.Since(start).Seconds())
	}()

	groups := make(map[neighborhood.ID]*accumulator)
	city := CityStats{
		Rankings:   []Ranking{},
		ByCategory: make(map[classify.Category]int),
	}

	for _, r := range records {
		if r.NeighborhoodID == "" {
			continue
		}
		a, ok := groups[r.NeighborhoodID]
		if !ok {
			a = &accumulator{
				categories: make(map[classify.Category]int),
				sources:    make(map[Source]int),
			}
			groups[r.NeighborhoodID] = a
		}
		a.total++
		a.categories[r.Category]++
		a.sources[r.Source]++
		city.ByCategory[r.Category]++
	}

	stats := make(map[neighborhood.ID]NeighborhoodStats, len(groups))
	denominatorTotal := 0
	rateSum := 0.0
	for id, a := range groups {
		denom, estimated := denominatorFor(family, n, id)
		rate := round1(float64(a.total) / float64(denom) * 1000)
		stats[id] = NeighborhoodStats{
			NeighborhoodID:       id,
			Name:                 n.Name(id),
			Total:                a.total,
			RatePer1000:          rate,
			TopCategories:        topCategories(a.categories, a.total, family.Taxonomy),
			SourceBreakdown:      a.sources,
			Denominator:          family.Denominator,
			DenominatorValue:     denom,
			EstimatedDenominator: estimated,
		}
		city.Total += a.total
		denominatorTotal += denom
		rateSum += rate
	}

	if len(stats) > 0 {
		city.AverageRate = round1(rateSum / float64(len(stats)))
		city.WeightedAverageRate = round1(float64(city.Total) / float64(denominatorTotal) * 1000)
	}
	city.Rankings = rankings(stats)

	return stats, city
}

func denominatorFor(family Family, n *neighborhood.Normalizer, id neighborhood.ID) (int, bool) {
	if family.Denominator == DenominatorHousingUnits {
		return n.HousingUnits(id), n.HousingUnitsEstimated(id)
	}
	return n.Population(id), n.PopulationEstimated(id)
}

// topCategories orders by count descending with ties broken by taxonomy
// order, then keeps the first MaxTopCategories.
func topCategories(counts map[classify.Category]int, total int, tax classify.Taxonomy) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for c, count := range counts {
		out = append(out, CategoryCount{
			Category:   c,
			Label:      c.Label(),
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(total) * 100)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		ri, rj := tax.Rank(out[i].Category), tax.Rank(out[j].Category)
		if ri != rj {
			return ri < rj
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > MaxTopCategories {
		out = out[:MaxTopCategories]
	}
	return out
}

// rankings orders by rate descending, id ascending, with strict ordinal
// ranks 1..N. Equal rates still get distinct ranks.
func rankings(stats map[neighborhood.ID]NeighborhoodStats) []Ranking {
	out := make([]Ranking, 0, len(stats))
	for id, s := range stats {
		out = append(out, Ranking{NeighborhoodID: id, Rate: s.RatePer1000})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate > out[j].Rate
		}
		return out[i].NeighborhoodID < out[j].NeighborhoodID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
