// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package classify

import "github.com/tomtom215/resonate/internal/opendata"

// Eviction notice categories.
const (
	NonPayment         Category = "non_payment"
	Breach             Category = "breach"
	Nuisance           Category = "nuisance"
	OwnerMoveIn        Category = "owner_move_in"
	EllisAct           Category = "ellis_act"
	Demolition         Category = "demolition"
	CapitalImprovement Category = "capital_improvement"
)

// EvictionTaxonomy is the ordered eviction category set.
var EvictionTaxonomy = Taxonomy{
	Name: "evictions",
	Categories: []Category{
		NonPayment, Breach, Nuisance, OwnerMoveIn, EllisAct,
		Demolition, CapitalImprovement, Other,
	},
}

// EvictionRule assigns Category when Match holds. A notice can cite several
// just causes; the first matching rule wins.
type EvictionRule struct {
	Category Category
	Match    func(opendata.EvictionNotice) bool
}

// EvictionRules is the eviction decision list.
var EvictionRules = []EvictionRule{
	{NonPayment, func(n opendata.EvictionNotice) bool { return n.NonPayment }},
	{Breach, func(n opendata.EvictionNotice) bool { return n.Breach }},
	{Nuisance, func(n opendata.EvictionNotice) bool { return n.Nuisance || n.IllegalUse }},
	{OwnerMoveIn, func(n opendata.EvictionNotice) bool { return n.OwnerMoveIn }},
	{EllisAct, func(n opendata.EvictionNotice) bool { return n.EllisActWithdrawal }},
	{Demolition, func(n opendata.EvictionNotice) bool { return n.Demolition }},
	{CapitalImprovement, func(n opendata.EvictionNotice) bool { return n.CapitalImprovement || n.SubstantialRehab }},
}

//nolint:gochecknoinits // label registration must precede any lookup
func init() {
	registerLabels(map[Category]string{
		NonPayment:         "Non-Payment",
		Breach:             "Lease Breach",
		Nuisance:           "Nuisance",
		OwnerMoveIn:        "Owner Move-In",
		EllisAct:           "Ellis Act Withdrawal",
		Demolition:         "Demolition",
		CapitalImprovement: "Capital Improvement",
	})
}

// Eviction returns the category of the first matching rule, or Other.
func Eviction(n opendata.EvictionNotice) Category {
	for _, r := range EvictionRules {
		if r.Match(n) {
			return r.Category
		}
	}
	return Other
}
