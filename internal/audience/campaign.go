// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package audience

import (
	"errors"
	"fmt"

	"github.com/tomtom215/resonate/internal/validation"
)

// ErrInvalidCampaign wraps campaign validation failures.
var ErrInvalidCampaign = errors.New("invalid campaign")

// Goal is the campaign objective. It selects default weights and, when the
// campaign names no formats, the deliverables considered for cost.
type Goal string

const (
	GoalAwareness           Goal = "awareness"
	GoalCommunityEngagement Goal = "community_engagement"
	GoalTargetedOutreach    Goal = "targeted_outreach"
	GoalEventPromotion      Goal = "event_promotion"
)

// Campaign is the advertiser-side record as handed over by campaign
// management. Weight fields are optional and need not sum to 100.
type Campaign struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name,omitempty"`
	Goal    Goal     `json:"goal,omitempty" validate:"omitempty,oneof=awareness community_engagement targeted_outreach event_promotion"`
	Formats []string `json:"formats,omitempty" validate:"dive,slug"`

	Citywide            bool     `json:"citywide,omitempty"`
	TargetNeighborhoods []string `json:"target_neighborhoods,omitempty"`
	TargetDistricts     []int    `json:"target_districts,omitempty" validate:"dive,min=1,max=11"`
	TargetZips          []string `json:"target_zips,omitempty" validate:"dive,numeric,len=5"`

	TargetLanguages              []string `json:"target_languages,omitempty"`
	TargetAgeRanges              []string `json:"target_age_ranges,omitempty"`
	TargetIncomeLevels           []string `json:"target_income_levels,omitempty"`
	TargetHousingStatus          []string `json:"target_housing_status,omitempty"`
	TargetBenefitPrograms        []string `json:"target_benefit_programs,omitempty"`
	TargetCommunities            []string `json:"target_communities,omitempty"`
	TargetImmigrationGenerations []string `json:"target_immigration_generations,omitempty"`
	TargetIdentityFactors        []string `json:"target_identity_factors,omitempty"`

	WeightGeographic  *float64 `json:"weight_geographic,omitempty" validate:"omitempty,finite,gte=0"`
	WeightDemographic *float64 `json:"weight_demographic,omitempty" validate:"omitempty,finite,gte=0"`
	WeightEconomic    *float64 `json:"weight_economic,omitempty" validate:"omitempty,finite,gte=0"`
	WeightCultural    *float64 `json:"weight_cultural,omitempty" validate:"omitempty,finite,gte=0"`
	WeightReach       *float64 `json:"weight_reach,omitempty" validate:"omitempty,finite,gte=0"`

	BudgetMin *float64 `json:"budget_min,omitempty" validate:"omitempty,finite,gte=0"`
	BudgetMax *float64 `json:"budget_max,omitempty" validate:"omitempty,finite,gte=0"`
}

// Validate checks field ranges.
func (c *Campaign) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCampaign, verr)
	}
	if c.BudgetMin != nil && c.BudgetMax != nil && *c.BudgetMax < *c.BudgetMin {
		return fmt.Errorf("%w: budget_max is below budget_min", ErrInvalidCampaign)
	}
	return nil
}

// PriorityWeights are raw dimension weights in any positive scale.
type PriorityWeights struct {
	Geographic  float64 `json:"geographic"`
	Demographic float64 `json:"demographic"`
	Economic    float64 `json:"economic"`
	Cultural    float64 `json:"cultural"`
	Reach       float64 `json:"reach"`
}

// Sum is the total of all five weights.
func (w PriorityWeights) Sum() float64 {
	return w.Geographic + w.Demographic + w.Economic + w.Cultural + w.Reach
}

// Budget is the campaign spend range. Either bound may be absent.
type Budget struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// TargetAudience is the immutable targeting snapshot for one matching run.
// Values are normalized (lower-case, trimmed, de-duplicated).
type TargetAudience struct {
	Geographic  GeographicProfile  `json:"geographic"`
	Demographic DemographicProfile `json:"demographic"`
	Economic    EconomicProfile    `json:"economic"`
	Cultural    CulturalProfile    `json:"cultural"`
	Weights     *PriorityWeights   `json:"priority_weights,omitempty"`
	Goal        Goal               `json:"goal,omitempty"`
	Formats     []string           `json:"formats,omitempty"`
	Budget      Budget             `json:"budget"`
}

// TargetAudience builds the matching snapshot. A campaign with no
// geographic descriptor targets the whole city. Communities feed both the
// ethnicity and the community-affiliation facets. Weights are set only when
// at least one weight field is present.
func (c *Campaign) TargetAudience() TargetAudience {
	t := TargetAudience{
		Geographic: GeographicProfile{
			Neighborhoods: NormalizeValues(c.TargetNeighborhoods),
			Districts:     UniqueInts(c.TargetDistricts),
			ZipCodes:      NormalizeValues(c.TargetZips),
		},
		Demographic: DemographicProfile{
			Languages: NormalizeValues(c.TargetLanguages),
			AgeRanges: NormalizeValues(c.TargetAgeRanges),
		},
		Economic: EconomicProfile{
			IncomeLevels:    NormalizeValues(c.TargetIncomeLevels),
			HousingStatus:   NormalizeValues(c.TargetHousingStatus),
			BenefitPrograms: NormalizeValues(c.TargetBenefitPrograms),
		},
		Cultural: CulturalProfile{
			Ethnicities:            NormalizeValues(c.TargetCommunities),
			ImmigrationGenerations: NormalizeValues(c.TargetImmigrationGenerations),
			CommunityAffiliations:  NormalizeValues(c.TargetCommunities),
			IdentityFactors:        NormalizeValues(c.TargetIdentityFactors),
		},
		Goal:    c.Goal,
		Formats: NormalizeValues(c.Formats),
		Budget:  Budget{Min: copyFloat(c.BudgetMin), Max: copyFloat(c.BudgetMax)},
	}

	g := &t.Geographic
	g.Citywide = c.Citywide || (len(g.Neighborhoods) == 0 && len(g.Districts) == 0 && len(g.ZipCodes) == 0)

	if c.WeightGeographic != nil || c.WeightDemographic != nil || c.WeightEconomic != nil ||
		c.WeightCultural != nil || c.WeightReach != nil {
		t.Weights = &PriorityWeights{
			Geographic:  deref(c.WeightGeographic),
			Demographic: deref(c.WeightDemographic),
			Economic:    deref(c.WeightEconomic),
			Cultural:    deref(c.WeightCultural),
			Reach:       deref(c.WeightReach),
		}
	}
	return t
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
