// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package matching

import (
	"fmt"
	"math"

	"github.com/tomtom215/resonate/internal/audience"
	"github.com/tomtom215/resonate/internal/neighborhood"
)

const (
	// NeutralScore is given to dimensions the target does not constrain
	// and to optional publisher data that is missing.
	NeutralScore = 50.0

	citywideBase  = 20.0
	citywideRange = 75.0

	reachSaturation      = 1_000_000
	engagementSaturation = 0.08
	reachSizeShare       = 0.6
	reachQualityShare    = 0.4
)

// target is a TargetAudience resolved once per run: neighborhood names
// mapped to canonical ids and facets turned into ordered value lists.
type target struct {
	mode          GeographicMode
	neighborhoods []neighborhood.ID
	districts     []int
	zips          []string

	languages []string
	ageRanges []string

	incomeLevels    []string
	housingStatus   []string
	benefitPrograms []string

	cultural []string

	formats []string
	budget  audience.Budget

	// unmapped target neighborhood names, reported once per run
	unmapped []string
}

func prepareTarget(t *audience.TargetAudience, n *neighborhood.Normalizer) *target {
	pt := &target{
		languages:       audience.NormalizeValues(t.Demographic.Languages),
		ageRanges:       audience.NormalizeValues(t.Demographic.AgeRanges),
		incomeLevels:    audience.NormalizeValues(t.Economic.IncomeLevels),
		housingStatus:   audience.NormalizeValues(t.Economic.HousingStatus),
		benefitPrograms: audience.NormalizeValues(t.Economic.BenefitPrograms),
		cultural:        culturalValues(&t.Cultural),
		formats:         deliverablesFor(t),
		budget:          t.Budget,
	}

	seen := make(map[neighborhood.ID]struct{})
	for _, raw := range t.Geographic.Neighborhoods {
		id, ok := n.Normalize(raw)
		if !ok {
			pt.unmapped = append(pt.unmapped, raw)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pt.neighborhoods = append(pt.neighborhoods, id)
	}
	pt.districts = audience.UniqueInts(t.Geographic.Districts)
	pt.zips = audience.NormalizeValues(t.Geographic.ZipCodes)

	switch {
	case len(pt.neighborhoods) > 0:
		pt.mode = ModeNeighborhoods
	case len(pt.districts) > 0:
		pt.mode = ModeDistricts
	case len(pt.zips) > 0:
		pt.mode = ModeZipCodes
	default:
		pt.mode = ModeCitywide
	}
	return pt
}

// footprint is where a publisher's audience lives. Declared districts
// expand to their neighborhoods and declared neighborhoods contribute
// their districts.
type footprint struct {
	citywide      bool
	neighborhoods map[neighborhood.ID]struct{}
	districts     map[int]struct{}
	zips          map[string]struct{}
}

func publisherFootprint(g *audience.GeographicProfile, n *neighborhood.Normalizer) footprint {
	fp := footprint{
		citywide:      g.Citywide,
		neighborhoods: make(map[neighborhood.ID]struct{}),
		districts:     make(map[int]struct{}),
		zips:          toSet(audience.NormalizeValues(g.ZipCodes)),
	}
	for _, raw := range g.Neighborhoods {
		id, ok := n.Normalize(raw)
		if !ok {
			continue
		}
		fp.neighborhoods[id] = struct{}{}
		if d, ok := n.District(id); ok {
			fp.districts[d] = struct{}{}
		}
	}
	for _, d := range g.Districts {
		fp.districts[d] = struct{}{}
		for _, id := range n.InDistrict(d) {
			fp.neighborhoods[id] = struct{}{}
		}
	}
	return fp
}

// scoreGeographic scores coverage of the target footprint. A citywide
// target rewards breadth; a specific target rewards overlap with whichever
// descriptor it names.
func scoreGeographic(t *target, fp footprint, n *neighborhood.Normalizer) (float64, GeographicDetail) {
	d := GeographicDetail{Mode: t.mode, PublisherCitywide: fp.citywide}

	if t.mode == ModeCitywide {
		d.Targeted = n.Count()
		if fp.citywide {
			d.Covered = d.Targeted
			return 100, d
		}
		d.Covered = len(fp.neighborhoods)
		if d.Targeted == 0 {
			return citywideBase, d
		}
		return citywideBase + citywideRange*float64(d.Covered)/float64(d.Targeted), d
	}

	var matched []string
	switch t.mode {
	case ModeNeighborhoods:
		d.Targeted = len(t.neighborhoods)
		for _, id := range t.neighborhoods {
			if _, ok := fp.neighborhoods[id]; ok || fp.citywide {
				matched = append(matched, n.Name(id))
			}
		}
	case ModeDistricts:
		d.Targeted = len(t.districts)
		for _, dist := range t.districts {
			if _, ok := fp.districts[dist]; ok || fp.citywide {
				matched = append(matched, fmt.Sprintf("District %d", dist))
			}
		}
	case ModeZipCodes:
		d.Targeted = len(t.zips)
		for _, z := range t.zips {
			if _, ok := fp.zips[z]; ok || fp.citywide {
				matched = append(matched, z)
			}
		}
	}
	d.Covered = len(matched)
	d.Matched = matched
	if fp.citywide {
		return 100, d
	}
	return fraction(d.Covered, d.Targeted) * 100, d
}

// scoreDemographic weighs language overlap twice as heavily as age-range
// overlap. Facets the target leaves empty do not participate.
func scoreDemographic(t *target, p *audience.DemographicProfile) (score float64, languages, ages []string, compared bool) {
	hasLang, hasAge := len(t.languages) > 0, len(t.ageRanges) > 0
	if !hasLang && !hasAge {
		return NeutralScore, nil, nil, false
	}

	var pubLang, pubAge map[string]struct{}
	if p != nil {
		pubLang = toSet(audience.NormalizeValues(p.Languages))
		pubAge = toSet(audience.NormalizeValues(p.AgeRanges))
	}
	languages = intersect(t.languages, pubLang)
	ages = intersect(t.ageRanges, pubAge)

	l := fraction(len(languages), len(t.languages))
	a := fraction(len(ages), len(t.ageRanges))
	switch {
	case hasLang && hasAge:
		score = (2*l + a) / 3
	case hasLang:
		score = l
	default:
		score = a
	}
	return score * 100, languages, ages, true
}

// scoreEconomic averages overlap across the facets the target names. A
// publisher with no economic profile gets the neutral score and is
// flagged; a single facet the publisher left empty counts as half.
func scoreEconomic(t *target, p *audience.EconomicProfile) (score float64, matched []string, compared, defaulted bool) {
	type facet struct {
		want []string
		have []string
	}
	var pub audience.EconomicProfile
	if p != nil {
		pub = *p
	}
	facets := []facet{
		{t.incomeLevels, pub.IncomeLevels},
		{t.housingStatus, pub.HousingStatus},
		{t.benefitPrograms, pub.BenefitPrograms},
	}

	active := 0
	for _, f := range facets {
		if len(f.want) > 0 {
			active++
		}
	}
	if active == 0 {
		return NeutralScore, nil, false, false
	}
	if p.Empty() {
		return NeutralScore, nil, true, true
	}

	total := 0.0
	for _, f := range facets {
		if len(f.want) == 0 {
			continue
		}
		have := audience.NormalizeValues(f.have)
		if len(have) == 0 {
			total += 0.5
			continue
		}
		hit := intersect(f.want, toSet(have))
		matched = append(matched, hit...)
		total += fraction(len(hit), len(f.want))
	}
	return total / float64(active) * 100, matched, true, false
}

// scoreCultural is the share of distinct target values, across all four
// cultural facets, that the publisher also declares.
func scoreCultural(t *target, p *audience.CulturalProfile) (score float64, matched []string, compared, defaulted bool) {
	if len(t.cultural) == 0 {
		return NeutralScore, nil, false, false
	}
	have := culturalValues(p)
	if len(have) == 0 {
		return NeutralScore, nil, true, true
	}
	matched = intersect(t.cultural, toSet(have))
	return fraction(len(matched), len(t.cultural)) * 100, matched, true, false
}

// scoreReach combines audience size, log-saturating at one million, with
// engagement, linear up to 8% and flat beyond.
func scoreReach(reach int, engagement float64) float64 {
	size := 0.0
	if reach > 0 {
		size = math.Min(1, math.Log10(1+float64(reach))/math.Log10(reachSaturation))
	}
	quality := 0.0
	if engagement > 0 {
		quality = math.Min(1, engagement/engagementSaturation)
	}
	return 100 * (reachSizeShare*size + reachQualityShare*quality)
}

// culturalValues is the de-duplicated union of every cultural facet.
func culturalValues(c *audience.CulturalProfile) []string {
	if c == nil {
		return nil
	}
	all := make([]string, 0, len(c.Ethnicities)+len(c.ImmigrationGenerations)+
		len(c.CommunityAffiliations)+len(c.IdentityFactors))
	all = append(all, c.Ethnicities...)
	all = append(all, c.ImmigrationGenerations...)
	all = append(all, c.CommunityAffiliations...)
	all = append(all, c.IdentityFactors...)
	return audience.NormalizeValues(all)
}

// intersect returns the members of want found in have, in want's order.
func intersect(want []string, have map[string]struct{}) []string {
	if len(have) == 0 {
		return nil
	}
	var out []string
	for _, v := range want {
		if _, ok := have[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func fraction(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
