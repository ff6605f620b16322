// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package matching

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/resonate/internal/audience"
	"github.com/tomtom215/resonate/internal/neighborhood"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     audience.PriorityWeights
		want    Weights
		wantErr bool
	}{
		{"already 100", audience.PriorityWeights{Geographic: 25, Demographic: 20, Economic: 20, Cultural: 20, Reach: 15}, DefaultWeights, false},
		{"fractions", audience.PriorityWeights{Geographic: 0.5, Demographic: 0.5}, Weights{Geographic: 50, Demographic: 50}, false},
		{"single dimension", audience.PriorityWeights{Reach: 7}, Weights{Reach: 100}, false},
		{"all zero", audience.PriorityWeights{}, Weights{}, true},
		{"negative", audience.PriorityWeights{Geographic: -10, Reach: 20}, Weights{}, true},
		{"nan", audience.PriorityWeights{Geographic: math.NaN(), Reach: 20}, Weights{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrNoApplicableWeights) {
					t.Errorf("Expected ErrNoApplicableWeights, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestGoalPresetsSumTo100(t *testing.T) {
	goals := []audience.Goal{
		audience.GoalAwareness, audience.GoalCommunityEngagement,
		audience.GoalTargetedOutreach, audience.GoalEventPromotion,
	}
	for _, g := range goals {
		w, ok := GoalPreset(g)
		if !ok {
			t.Errorf("Missing preset for %s", g)
			continue
		}
		if sum := w.raw().Sum(); sum != 100 {
			t.Errorf("%s: preset sums to %g", g, sum)
		}
	}
	if sum := DefaultWeights.raw().Sum(); sum != 100 {
		t.Errorf("Default weights sum to %g", sum)
	}
}

func TestResolveWeights(t *testing.T) {
	awareness, _ := GoalPreset(audience.GoalAwareness)
	tests := []struct {
		name       string
		target     audience.TargetAudience
		want       Weights
		wantSource WeightSource
	}{
		{
			name:       "campaign weights win",
			target:     audience.TargetAudience{Goal: audience.GoalAwareness, Weights: &audience.PriorityWeights{Geographic: 1, Reach: 1}},
			want:       Weights{Geographic: 50, Reach: 50},
			wantSource: WeightsFromCampaign,
		},
		{
			name:       "all zero falls back to goal",
			target:     audience.TargetAudience{Goal: audience.GoalAwareness, Weights: &audience.PriorityWeights{}},
			want:       awareness,
			wantSource: WeightsFromGoal,
		},
		{
			name:       "no goal uses defaults",
			target:     audience.TargetAudience{},
			want:       DefaultWeights,
			wantSource: WeightsFromDefault,
		},
		{
			name:       "all zero without goal uses defaults",
			target:     audience.TargetAudience{Weights: &audience.PriorityWeights{}},
			want:       DefaultWeights,
			wantSource: WeightsFromDefault,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src, err := ResolveWeights(&tt.target)
			if err != nil {
				t.Fatalf("ResolveWeights() error = %v", err)
			}
			if src != tt.wantSource {
				t.Errorf("Expected source %q, got %q", tt.wantSource, src)
			}
			for _, pair := range [][2]float64{
				{got.Geographic, tt.want.Geographic},
				{got.Demographic, tt.want.Demographic},
				{got.Economic, tt.want.Economic},
				{got.Cultural, tt.want.Cultural},
				{got.Reach, tt.want.Reach},
			} {
				if math.Abs(pair[0]-pair[1]) > 1e-9 {
					t.Errorf("Expected %+v, got %+v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestScoreGeographic(t *testing.T) {
	n := neighborhood.New()
	total := float64(n.Count())

	tests := []struct {
		name      string
		target    audience.GeographicProfile
		publisher audience.GeographicProfile
		want      float64
		mode      GeographicMode
	}{
		{"citywide target, citywide publisher", audience.GeographicProfile{}, audience.GeographicProfile{Citywide: true}, 100, ModeCitywide},
		{"citywide target, one neighborhood", audience.GeographicProfile{}, audience.GeographicProfile{Neighborhoods: []string{"Mission"}}, 20 + 75/total, ModeCitywide},
		{"citywide target, no coverage", audience.GeographicProfile{}, audience.GeographicProfile{}, 20, ModeCitywide},
		{"neighborhoods half covered", audience.GeographicProfile{Neighborhoods: []string{"Mission", "Tenderloin"}}, audience.GeographicProfile{Neighborhoods: []string{"inner mission"}}, 50, ModeNeighborhoods},
		{"neighborhoods via district", audience.GeographicProfile{Neighborhoods: []string{"Mission"}}, audience.GeographicProfile{Districts: []int{9}}, 100, ModeNeighborhoods},
		{"neighborhoods citywide publisher", audience.GeographicProfile{Neighborhoods: []string{"Mission", "Tenderloin"}}, audience.GeographicProfile{Citywide: true}, 100, ModeNeighborhoods},
		{"districts via neighborhood", audience.GeographicProfile{Districts: []int{9, 10}}, audience.GeographicProfile{Neighborhoods: []string{"Mission"}}, 50, ModeDistricts},
		{"zip codes", audience.GeographicProfile{ZipCodes: []string{"94110", "94112"}}, audience.GeographicProfile{ZipCodes: []string{"94110"}}, 50, ModeZipCodes},
		{"unmapped target falls through", audience.GeographicProfile{Neighborhoods: []string{"Atlantis"}, ZipCodes: []string{"94110"}}, audience.GeographicProfile{ZipCodes: []string{"94110"}}, 100, ModeZipCodes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := prepareTarget(&audience.TargetAudience{Geographic: tt.target}, n)
			got, detail := scoreGeographic(pt, publisherFootprint(&tt.publisher, n), n)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %g, got %g", tt.want, got)
			}
			if detail.Mode != tt.mode {
				t.Errorf("Expected mode %q, got %q", tt.mode, detail.Mode)
			}
		})
	}
}

func TestScoreGeographic_NeverFullWithoutCitywide(t *testing.T) {
	n := neighborhood.New()
	all := make([]string, 0, n.Count())
	for _, id := range n.IDs() {
		all = append(all, string(id))
	}
	pt := prepareTarget(&audience.TargetAudience{}, n)
	got, detail := scoreGeographic(pt, publisherFootprint(&audience.GeographicProfile{Neighborhoods: all}, n), n)
	if got >= 100 {
		t.Errorf("Expected a score below 100, got %g", got)
	}
	if detail.Covered != n.Count() {
		t.Errorf("Expected %d covered, got %d", n.Count(), detail.Covered)
	}
}

func TestScoreDemographic(t *testing.T) {
	tests := []struct {
		name         string
		languages    []string
		ages         []string
		publisher    audience.DemographicProfile
		want         float64
		wantCompared bool
	}{
		{"no target facets", nil, nil, audience.DemographicProfile{Languages: []string{"spanish"}}, NeutralScore, false},
		{"languages only", []string{"spanish", "chinese"}, nil, audience.DemographicProfile{Languages: []string{"Spanish"}}, 50, true},
		{"ages only", nil, []string{"18-24"}, audience.DemographicProfile{AgeRanges: []string{"18-24"}}, 100, true},
		{"language counts double", []string{"spanish", "chinese"}, []string{"18-24"}, audience.DemographicProfile{Languages: []string{"spanish"}, AgeRanges: []string{"18-24"}}, 200.0 / 3, true},
		{"language full, age none", []string{"spanish"}, []string{"65+"}, audience.DemographicProfile{Languages: []string{"spanish"}}, 200.0 / 3, true},
		{"age full, language none", []string{"spanish"}, []string{"65+"}, audience.DemographicProfile{AgeRanges: []string{"65+"}}, 100.0 / 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := &target{languages: tt.languages, ageRanges: tt.ages}
			got, _, _, compared := scoreDemographic(pt, &tt.publisher)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %g, got %g", tt.want, got)
			}
			if compared != tt.wantCompared {
				t.Errorf("Expected compared=%v, got %v", tt.wantCompared, compared)
			}
		})
	}
}

func TestScoreEconomic(t *testing.T) {
	pt := &target{incomeLevels: []string{"low_income"}, housingStatus: []string{"renter"}}
	tests := []struct {
		name          string
		publisher     *audience.EconomicProfile
		want          float64
		wantDefaulted bool
		wantMatched   []string
	}{
		{"absent profile", nil, NeutralScore, true, nil},
		{"empty profile", &audience.EconomicProfile{}, NeutralScore, true, nil},
		{"full overlap", &audience.EconomicProfile{IncomeLevels: []string{"low_income"}, HousingStatus: []string{"renter"}}, 100, false, []string{"low_income", "renter"}},
		{"facet missing scores half", &audience.EconomicProfile{IncomeLevels: []string{"low_income"}}, 75, false, []string{"low_income"}},
		{"no overlap", &audience.EconomicProfile{IncomeLevels: []string{"high_income"}, HousingStatus: []string{"owner"}}, 0, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched, compared, defaulted := scoreEconomic(pt, tt.publisher)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %g, got %g", tt.want, got)
			}
			if !compared {
				t.Error("Expected economic to be compared")
			}
			if defaulted != tt.wantDefaulted {
				t.Errorf("Expected defaulted=%v, got %v", tt.wantDefaulted, defaulted)
			}
			if !reflect.DeepEqual(matched, tt.wantMatched) {
				t.Errorf("Expected matched %v, got %v", tt.wantMatched, matched)
			}
		})
	}

	if got, _, compared, _ := scoreEconomic(&target{}, nil); got != NeutralScore || compared {
		t.Errorf("Expected neutral, uncompared score without target facets, got %g compared=%v", got, compared)
	}
}

func TestScoreCultural(t *testing.T) {
	c := audience.Campaign{TargetCommunities: []string{"Latino"}, TargetIdentityFactors: []string{"lgbtq"}}
	ta := c.TargetAudience()
	pt := prepareTarget(&ta, neighborhood.New())

	if want := []string{"latino", "lgbtq"}; !reflect.DeepEqual(pt.cultural, want) {
		t.Fatalf("Expected de-duplicated target values %v, got %v", want, pt.cultural)
	}

	got, matched, _, _ := scoreCultural(pt, &audience.CulturalProfile{Ethnicities: []string{"latino"}, CommunityAffiliations: []string{"latino"}})
	if got != 50 {
		t.Errorf("Expected 50, got %g", got)
	}
	if !reflect.DeepEqual(matched, []string{"latino"}) {
		t.Errorf("Expected matched [latino], got %v", matched)
	}

	if got, _, _, defaulted := scoreCultural(pt, nil); got != NeutralScore || !defaulted {
		t.Errorf("Expected neutral defaulted score for absent profile, got %g defaulted=%v", got, defaulted)
	}
}

func TestScoreReach(t *testing.T) {
	if got := scoreReach(0, 0); got != 0 {
		t.Errorf("Expected 0 for no audience, got %g", got)
	}
	if got := scoreReach(1_000_000, 0.08); math.Abs(got-100) > 1e-6 {
		t.Errorf("Expected 100 at saturation, got %g", got)
	}
	if got := scoreReach(50_000_000, 0.5); math.Abs(got-100) > 1e-6 {
		t.Errorf("Expected flat 100 past saturation, got %g", got)
	}

	prev := -1.0
	for _, r := range []int{10, 100, 1000, 10_000, 100_000, 1_000_000} {
		got := scoreReach(r, 0.02)
		if got <= prev {
			t.Errorf("Expected reach score to increase at %d, got %g after %g", r, got, prev)
		}
		prev = got
	}

	small, big := scoreReach(10_000, 0.02), scoreReach(100_000, 0.02)
	if big >= 10*small || big/small > 1.5 {
		t.Errorf("Expected diminishing returns, 10x audience scored %g vs %g", big, small)
	}

	if engaged, larger := scoreReach(10_000, 0.08), scoreReach(100_000, 0.01); engaged <= larger {
		t.Errorf("Expected engagement to outweigh size, got %g <= %g", engaged, larger)
	}
}

func TestEstimateCost(t *testing.T) {
	card := []audience.RateEntry{
		{Deliverable: "print_ad", Price: 400},
		{Deliverable: "social_post", Price: 150},
		{Deliverable: "social_post", Price: 220},
		{Deliverable: "radio_spot", Price: 90},
	}

	est, ok := estimateCost(card, []string{"social_post", "newsletter"}, audience.Budget{})
	if !ok {
		t.Fatal("Expected applicable rates")
	}
	if est.Low != 150 || est.High != 220 {
		t.Errorf("Expected 150-220, got %g-%g", est.Low, est.High)
	}
	if !reflect.DeepEqual(est.Deliverables, []string{"social_post"}) {
		t.Errorf("Expected [social_post], got %v", est.Deliverables)
	}
	if est.WithinBudget != nil {
		t.Error("Expected no budget verdict without a budget")
	}

	est, _ = estimateCost(card, nil, audience.Budget{Max: ptr(80.0)})
	if est.Low != 90 || est.High != 400 {
		t.Errorf("Expected all entries 90-400, got %g-%g", est.Low, est.High)
	}
	if est.WithinBudget == nil || *est.WithinBudget {
		t.Errorf("Expected within_budget false, got %v", est.WithinBudget)
	}

	if _, ok := estimateCost(card, []string{"event_listing"}, audience.Budget{}); ok {
		t.Error("Expected no applicable rates")
	}
	if _, ok := estimateCost(nil, nil, audience.Budget{}); ok {
		t.Error("Expected an empty rate card to have no applicable rates")
	}
}

func TestDeliverablesFor(t *testing.T) {
	if got := deliverablesFor(&audience.TargetAudience{Formats: []string{"Newsletter"}, Goal: audience.GoalAwareness}); !reflect.DeepEqual(got, []string{"newsletter"}) {
		t.Errorf("Explicit formats should win, got %v", got)
	}
	if got := deliverablesFor(&audience.TargetAudience{Goal: audience.GoalEventPromotion}); len(got) == 0 || got[0] != "event_listing" {
		t.Errorf("Expected goal deliverables, got %v", got)
	}
	if got := deliverablesFor(&audience.TargetAudience{}); got != nil {
		t.Errorf("Expected nil without formats or goal, got %v", got)
	}
}
