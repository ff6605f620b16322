// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package matching

import (
	"errors"
	"math"

	"github.com/tomtom215/resonate/internal/audience"
)

// ErrNoApplicableWeights means a weighting could not be normalized. Resolve
// falls back to presets, so callers only see this on a broken preset table.
var ErrNoApplicableWeights = errors.New("no applicable weights")

// Weights are dimension weights normalized to sum to 100.
type Weights struct {
	Geographic  float64 `json:"geographic"`
	Demographic float64 `json:"demographic"`
	Economic    float64 `json:"economic"`
	Cultural    float64 `json:"cultural"`
	Reach       float64 `json:"reach"`
}

// WeightSource records where a run's weights came from.
type WeightSource string

const (
	WeightsFromCampaign WeightSource = "campaign"
	WeightsFromGoal     WeightSource = "goal_preset"
	WeightsFromDefault  WeightSource = "default"
)

// DefaultWeights apply when a campaign has neither weights nor a known goal.
var DefaultWeights = Weights{Geographic: 25, Demographic: 20, Economic: 20, Cultural: 20, Reach: 15}

var goalPresets = map[audience.Goal]Weights{
	audience.GoalAwareness:           {Geographic: 20, Demographic: 15, Economic: 10, Cultural: 15, Reach: 40},
	audience.GoalCommunityEngagement: {Geographic: 20, Demographic: 20, Economic: 15, Cultural: 35, Reach: 10},
	audience.GoalTargetedOutreach:    {Geographic: 30, Demographic: 20, Economic: 30, Cultural: 15, Reach: 5},
	audience.GoalEventPromotion:      {Geographic: 40, Demographic: 20, Economic: 10, Cultural: 15, Reach: 15},
}

// GoalPreset returns the preset for goal.
func GoalPreset(goal audience.Goal) (Weights, bool) {
	w, ok := goalPresets[goal]
	return w, ok
}

// Normalize scales raw weights so they sum to 100. Negative or non-finite
// values and a zero sum are rejected.
func Normalize(raw audience.PriorityWeights) (Weights, error) {
	vals := [5]float64{raw.Geographic, raw.Demographic, raw.Economic, raw.Cultural, raw.Reach}
	sum := 0.0
	for _, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, ErrNoApplicableWeights
		}
		sum += v
	}
	if sum <= 0 || math.IsInf(sum, 0) {
		return Weights{}, ErrNoApplicableWeights
	}
	return Weights{
		Geographic:  raw.Geographic / sum * 100,
		Demographic: raw.Demographic / sum * 100,
		Economic:    raw.Economic / sum * 100,
		Cultural:    raw.Cultural / sum * 100,
		Reach:       raw.Reach / sum * 100,
	}, nil
}

// ResolveWeights picks the campaign's own weights, then its goal preset,
// then DefaultWeights. Campaign weights that cannot be normalized, such as
// all zeros, fall through to the next source.
func ResolveWeights(t *audience.TargetAudience) (Weights, WeightSource, error) {
	if t.Weights != nil {
		if w, err := Normalize(*t.Weights); err == nil {
			return w, WeightsFromCampaign, nil
		}
	}
	if preset, ok := goalPresets[t.Goal]; ok {
		w, err := Normalize(preset.raw())
		return w, WeightsFromGoal, err
	}
	w, err := Normalize(DefaultWeights.raw())
	return w, WeightsFromDefault, err
}

// Apply returns the weighted overall score for per-dimension scores.
func (w Weights) Apply(s Scores) float64 {
	total := w.Geographic*s.Geographic +
		w.Demographic*s.Demographic +
		w.Economic*s.Economic +
		w.Cultural*s.Cultural +
		w.Reach*s.Reach
	return clamp(total/100, 0, 100)
}

func (w Weights) raw() audience.PriorityWeights {
	return audience.PriorityWeights(w)
}
