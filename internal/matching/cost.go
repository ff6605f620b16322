// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package matching

import (
	"math"
	"sort"

	"github.com/tomtom215/resonate/internal/audience"
)

// Currency of every rate card.
const Currency = "USD"

// goalDeliverables are the deliverables considered for cost when a
// campaign names a goal but no formats.
var goalDeliverables = map[audience.Goal][]string{
	audience.GoalAwareness:           {"print_ad", "digital_display", "social_post", "radio_spot", "video"},
	audience.GoalCommunityEngagement: {"social_post", "sponsored_content", "newsletter", "event_listing"},
	audience.GoalTargetedOutreach:    {"print_ad", "newsletter", "sponsored_content", "social_post"},
	audience.GoalEventPromotion:      {"event_listing", "social_post", "newsletter", "print_ad"},
}

// deliverablesFor returns the campaign's formats, else the goal's
// deliverables. nil means every rate entry applies.
func deliverablesFor(t *audience.TargetAudience) []string {
	if f := audience.NormalizeValues(t.Formats); len(f) > 0 {
		return f
	}
	return goalDeliverables[t.Goal]
}

// estimateCost prices a publisher from the rate entries that match the
// wanted deliverables. ok is false when none apply; such publishers are
// excluded from results.
func estimateCost(card []audience.RateEntry, want []string, budget audience.Budget) (CostEstimate, bool) {
	var allowed map[string]struct{}
	if len(want) > 0 {
		allowed = toSet(want)
	}

	est := CostEstimate{Low: math.Inf(1), High: math.Inf(-1), Currency: Currency}
	seen := make(map[string]struct{})
	for _, e := range card {
		if allowed != nil {
			if _, ok := allowed[e.Deliverable]; !ok {
				continue
			}
		}
		est.Low = math.Min(est.Low, e.Price)
		est.High = math.Max(est.High, e.Price)
		if _, dup := seen[e.Deliverable]; !dup {
			seen[e.Deliverable] = struct{}{}
			est.Deliverables = append(est.Deliverables, e.Deliverable)
		}
	}
	if len(est.Deliverables) == 0 {
		return CostEstimate{}, false
	}
	sort.Strings(est.Deliverables)

	if budget.Max != nil || budget.Min != nil {
		within := true
		if budget.Max != nil && est.Low > *budget.Max {
			within = false
		}
		if budget.Min != nil && est.High < *budget.Min {
			within = false
		}
		est.WithinBudget = &within
	}
	return est, true
}
