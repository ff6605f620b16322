// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package matching

import (
	"github.com/tomtom215/resonate/internal/neighborhood"
)

// Scores are the five 0-100 dimension sub-scores.
type Scores struct {
	Geographic  float64 `json:"geographic"`
	Demographic float64 `json:"demographic"`
	Economic    float64 `json:"economic"`
	Cultural    float64 `json:"cultural"`
	Reach       float64 `json:"reach"`
}

// Confidence is how far a score can be trusted, independent of its value.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// CostEstimate is the price range across applicable rate-card entries.
type CostEstimate struct {
	Low          float64  `json:"low"`
	High         float64  `json:"high"`
	Currency     string   `json:"currency"`
	Deliverables []string `json:"deliverables"`
	WithinBudget *bool    `json:"within_budget,omitempty"`
}

// GeographicMode names the target descriptor geography was scored against.
type GeographicMode string

const (
	ModeNeighborhoods GeographicMode = "neighborhoods"
	ModeDistricts     GeographicMode = "districts"
	ModeZipCodes      GeographicMode = "zip_codes"
	ModeCitywide      GeographicMode = "citywide"
)

// GeographicDetail explains the geographic score.
type GeographicDetail struct {
	Mode              GeographicMode `json:"mode"`
	PublisherCitywide bool           `json:"publisher_citywide"`
	Targeted          int            `json:"targeted"`
	Covered           int            `json:"covered"`
	Matched           []string       `json:"matched,omitempty"`
}

// NeighborhoodEvidence is civic context for a matched neighborhood. It is
// informational and never feeds the score.
type NeighborhoodEvidence struct {
	NeighborhoodID neighborhood.ID `json:"neighborhood_id"`
	Name           string          `json:"name"`
	Family         string          `json:"family"`
	RatePer1000    float64         `json:"rate_per_1000"`
	CityAverage    float64         `json:"city_average_rate"`
	Rank           int             `json:"rank"`
	Ranked         int             `json:"ranked"`
}

// MatchDetails carries the overlaps behind each sub-score.
type MatchDetails struct {
	Geographic          GeographicDetail       `json:"geographic"`
	Languages           []string               `json:"matched_languages,omitempty"`
	AgeRanges           []string               `json:"matched_age_ranges,omitempty"`
	Economic            []string               `json:"matched_economic,omitempty"`
	EconomicDefaulted   bool                   `json:"economic_defaulted,omitempty"`
	Cultural            []string               `json:"matched_cultural,omitempty"`
	CulturalDefaulted   bool                   `json:"cultural_defaulted,omitempty"`
	Reach               int                    `json:"reach"`
	EngagementRate      float64                `json:"engagement_rate"`
	ComparedDimensions  int                    `json:"compared_dimensions"`
	Weights             Weights                `json:"weights"`
	WeightSource        WeightSource           `json:"weight_source"`
	NeighborhoodContext []NeighborhoodEvidence `json:"neighborhood_context,omitempty"`
}

// MatchResult is one ranked publisher.
type MatchResult struct {
	PublisherID     string       `json:"publisher_id"`
	PublisherName   string       `json:"publisher_name,omitempty"`
	OverallScore    float64      `json:"overall_score"`
	Scores          Scores       `json:"scores"`
	MatchDetails    MatchDetails `json:"match_details"`
	MatchReasons    []string     `json:"match_reasons"`
	ConfidenceLevel Confidence   `json:"confidence_level"`
	EstimatedCost   CostEstimate `json:"estimated_cost"`
	EstimatedReach  *int         `json:"estimated_reach,omitempty"`
}

// Top returns at most n results. n <= 0 returns all of them.
func Top(results []MatchResult, n int) []MatchResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
