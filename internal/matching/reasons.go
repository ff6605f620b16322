// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package matching

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tomtom215/resonate/internal/audience"
)

// buildReasons returns one sentence per dimension at or above threshold,
// in fixed dimension order. Dimensions scored without overlap data (neutral
// or defaulted) never produce a sentence.
func buildReasons(s Scores, d *MatchDetails, threshold float64) []string {
	p := message.NewPrinter(language.English)
	reasons := make([]string, 0, 5)

	if s.Geographic >= threshold {
		g := d.Geographic
		switch {
		case g.PublisherCitywide:
			reasons = append(reasons, "Reaches audiences across the whole city")
		case g.Mode == ModeCitywide:
			reasons = append(reasons, p.Sprintf("Covers %d of %d city neighborhoods", g.Covered, g.Targeted))
		case len(g.Matched) > 0:
			reasons = append(reasons, p.Sprintf("Covers %d of %d target %s: %s",
				g.Covered, g.Targeted, geographicNoun(g.Mode), strings.Join(g.Matched, ", ")))
		}
	}

	if s.Demographic >= threshold && (len(d.Languages) > 0 || len(d.AgeRanges) > 0) {
		var parts []string
		if len(d.Languages) > 0 {
			parts = append(parts, "languages "+strings.Join(d.Languages, ", "))
		}
		if len(d.AgeRanges) > 0 {
			parts = append(parts, "age ranges "+strings.Join(d.AgeRanges, ", "))
		}
		reasons = append(reasons, "Shares target "+strings.Join(parts, "; "))
	}

	if s.Economic >= threshold && !d.EconomicDefaulted && len(d.Economic) > 0 {
		reasons = append(reasons, "Serves target economic groups: "+strings.Join(d.Economic, ", "))
	}

	if s.Cultural >= threshold && !d.CulturalDefaulted && len(d.Cultural) > 0 {
		reasons = append(reasons, "Connects with target communities: "+strings.Join(d.Cultural, ", "))
	}

	if s.Reach >= threshold && d.Reach > 0 {
		reasons = append(reasons, p.Sprintf("Reaches about %d people at %.1f%% engagement",
			d.Reach, d.EngagementRate*100))
	}
	return reasons
}

func geographicNoun(mode GeographicMode) string {
	switch mode {
	case ModeDistricts:
		return "districts"
	case ModeZipCodes:
		return "zip codes"
	default:
		return "neighborhoods"
	}
}

// confidenceFor grades trust in a result from the publisher's verification
// level, how many dimensions had target data to compare, and whether any
// optional profile was defaulted. Self-reported profiles cap at medium.
func confidenceFor(level audience.VerificationLevel, compared int, defaulted bool) Confidence {
	switch level {
	case audience.Verified:
		if compared >= 4 && !defaulted {
			return ConfidenceHigh
		}
		if compared >= 2 {
			return ConfidenceMedium
		}
	case audience.PartiallyVerified:
		if compared >= 3 {
			return ConfidenceMedium
		}
	default:
		if compared >= 4 && !defaulted {
			return ConfidenceMedium
		}
	}
	return ConfidenceLow
}
