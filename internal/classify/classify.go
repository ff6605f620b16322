// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package classify maps free-text fields from civic datasets onto small,
// closed category sets.
//
// Each domain is an ordered decision list of keyword rules. Input is
// lower-cased and the first rule (top to bottom) with any keyword occurring
// as a substring wins. Rule order encodes precedence: a specific phrase such
// as "vehicle theft" must sit above the broader "vehicle" and "theft" rules.
// When adding a rule, place it relative to the rules it overlaps with.
//
// Matching runs through an Aho-Corasick automaton. Every keyword hit maps
// back to the index of its rule and the lowest index wins, which gives the
// same answer as walking the list.
package classify

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Category is a machine-readable category id.
type Category string

// Other is the catch-all shared by every domain.
const Other Category = "other"

// Label returns the user-facing name for c.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return "Other"
}

// labels holds display names. They are part of the data contract and must
// stay non-stigmatizing.
var labels = map[Category]string{Other: "Other"}

func registerLabels(m map[Category]string) {
	for k, v := range m {
		labels[k] = v
	}
}

// Rule assigns Category when any keyword occurs in the input.
type Rule struct {
	Category Category
	Keywords []string
}

// Taxonomy is the closed, ordered category set of one domain. The order is
// the tie-break order for category rankings.
type Taxonomy struct {
	Name       string
	Categories []Category
}

// Rank returns the position of c in the taxonomy, or len(Categories) if c is
// not a member.
func (t Taxonomy) Rank(c Category) int {
	for i, tc := range t.Categories {
		if tc == c {
			return i
		}
	}
	return len(t.Categories)
}

// Contains reports whether c belongs to the taxonomy.
func (t Taxonomy) Contains(c Category) bool {
	return t.Rank(c) < len(t.Categories)
}

// Labels returns category -> label for every member.
func (t Taxonomy) Labels() map[Category]string {
	out := make(map[Category]string, len(t.Categories))
	for _, c := range t.Categories {
		out[c] = c.Label()
	}
	return out
}

// Classifier evaluates an ordered rule list.
type Classifier struct {
	rules    []Rule
	fallback Category

	// keywords[i] belongs to rule keywordRule[i]. Each keyword appears once,
	// attributed to the first rule that lists it.
	keywords    []string
	keywordRule []int

	// The automaton keeps per-match state, so Match calls are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// NewClassifier builds a classifier. fallback is returned for empty input
// and when no rule matches.
func NewClassifier(rules []Rule, fallback Category) *Classifier {
	c := &Classifier{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}

	seen := make(map[string]bool)
	for ri, r := range c.rules {
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			c.keywords = append(c.keywords, kw)
			c.keywordRule = append(c.keywordRule, ri)
		}
	}
	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	}
	return c
}

// Rules returns a copy of the decision list in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Classify is total: it never fails and never returns "".
func (c *Classifier) Classify(raw string) Category {
	return c.ClassifyOr(raw, c.fallback)
}

// ClassifyOr is Classify with a caller-chosen result for blank input. Some
// sources give "no category" a meaning of their own.
func (c *Classifier) ClassifyOr(raw string, emptyDefault Category) Category {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return emptyDefault
	}
	if c.matcher == nil {
		return c.fallback
	}

	c.mu.Lock()
	hits := c.matcher.Match([]byte(text))
	c.mu.Unlock()

	best := -1
	for _, h := range hits {
		if h < 0 || h >= len(c.keywordRule) {
			continue
		}
		if ri := c.keywordRule[h]; best == -1 || ri < best {
			best = ri
		}
	}
	if best == -1 {
		return c.fallback
	}
	return c.rules[best].Category
}
