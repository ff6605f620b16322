// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package neighborhood maps the place-name spellings used across civic
// datasets onto one canonical neighborhood id set and supplies the
// population and housing-unit denominators used for rates.
//
// Lookup is exact after trimming, whitespace collapsing, Unicode case
// folding and accent stripping. There is no fuzzy attribution: a name that
// is not in the alias table is unmapped and the record must be dropped.
// Edit-distance suggestions exist only to make the warning log useful.
package neighborhood

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback denominators for neighborhoods missing from the reference table.
// Rates computed with them are approximations and are flagged as such.
const (
	FallbackPopulation   = 10000
	FallbackHousingUnits = 10000
)

// ErrUnmappable is matched by *UnmappableError.
var ErrUnmappable = errors.New("unmappable neighborhood")

// UnmappableError reports a name with no alias entry.
type UnmappableError struct {
	Raw         string
	Suggestions []string
}

func (e *UnmappableError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unmappable neighborhood %q", e.Raw)
	}
	return fmt.Sprintf("unmappable neighborhood %q (closest: %s)", e.Raw, strings.Join(e.Suggestions, ", "))
}

// Is reports true for ErrUnmappable.
func (e *UnmappableError) Is(target error) bool {
	return target == ErrUnmappable
}

// ID is a canonical neighborhood identifier such as "mission".
type ID string

// Neighborhood is one reference table row. Zero Population or HousingUnits
// means the value is unknown.
type Neighborhood struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	District     int    `json:"district"`
	Population   int    `json:"population"`
	HousingUnits int    `json:"housing_units"`
}

// Normalizer resolves raw names. It is immutable after construction and
// safe for concurrent use.
type Normalizer struct {
	byID    map[ID]Neighborhood
	ids     []ID
	aliases map[string]ID
}

// New returns the San Francisco normalizer.
func New() *Normalizer {
	n, err := NewNormalizer(sfNeighborhoods, sfAliases)
	if err != nil {
		panic(err) // static table
	}
	return n
}

// NewNormalizer builds a normalizer from a reference table and alias map.
// Every neighborhood's id and display name become aliases automatically.
func NewNormalizer(table []Neighborhood, aliases map[string]ID) (*Normalizer, error) {
	n := &Normalizer{
		byID:    make(map[ID]Neighborhood, len(table)),
		aliases: make(map[string]ID, len(aliases)+3*len(table)),
	}

	for _, nb := range table {
		if nb.ID == "" {
			return nil, errors.New("neighborhood with empty id")
		}
		if _, dup := n.byID[nb.ID]; dup {
			return nil, fmt.Errorf("duplicate neighborhood id %q", nb.ID)
		}
		n.byID[nb.ID] = nb
		n.ids = append(n.ids, nb.ID)
		n.aliases[n.key(string(nb.ID))] = nb.ID
		n.aliases[n.key(strings.ReplaceAll(string(nb.ID), "_", " "))] = nb.ID
		n.aliases[n.key(nb.Name)] = nb.ID
	}
	sort.Slice(n.ids, func(i, j int) bool { return n.ids[i] < n.ids[j] })

	for alias, id := range aliases {
		if _, ok := n.byID[id]; !ok {
			return nil, fmt.Errorf("alias %q points at unknown neighborhood %q", alias, id)
		}
		n.aliases[n.key(alias)] = id
	}
	return n, nil
}

// key folds raw into the alias lookup form. Transformers and casers carry
// state, so both are built per call.
func (n *Normalizer) key(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, raw)
	if err != nil {
		s = raw
	}
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Normalize returns the canonical id for raw, or false when unmapped.
func (n *Normalizer) Normalize(raw string) (ID, bool) {
	k := n.key(raw)
	if k == "" {
		return "", false
	}
	id, ok := n.aliases[k]
	return id, ok
}

// Resolve is Normalize with an *UnmappableError carrying suggestions.
func (n *Normalizer) Resolve(raw string) (ID, error) {
	if id, ok := n.Normalize(raw); ok {
		return id, nil
	}
	return "", &UnmappableError{Raw: raw, Suggestions: n.Suggest(raw, 3)}
}

// Get returns the reference row for id.
func (n *Normalizer) Get(id ID) (Neighborhood, bool) {
	nb, ok := n.byID[id]
	return nb, ok
}

// Known reports whether id is in the reference table.
func (n *Normalizer) Known(id ID) bool {
	_, ok := n.byID[id]
	return ok
}

// Population returns the resident count, or FallbackPopulation.
func (n *Normalizer) Population(id ID) int {
	if nb, ok := n.byID[id]; ok && nb.Population > 0 {
		return nb.Population
	}
	return FallbackPopulation
}

// PopulationEstimated reports whether Population(id) is the fallback.
func (n *Normalizer) PopulationEstimated(id ID) bool {
	nb, ok := n.byID[id]
	return !ok || nb.Population <= 0
}

// HousingUnits returns the housing unit count, or FallbackHousingUnits.
func (n *Normalizer) HousingUnits(id ID) int {
	if nb, ok := n.byID[id]; ok && nb.HousingUnits > 0 {
		return nb.HousingUnits
	}
	return FallbackHousingUnits
}

// HousingUnitsEstimated reports whether HousingUnits(id) is the fallback.
func (n *Normalizer) HousingUnitsEstimated(id ID) bool {
	nb, ok := n.byID[id]
	return !ok || nb.HousingUnits <= 0
}

// Name returns the display name, or the id itself when unknown.
func (n *Normalizer) Name(id ID) string {
	if nb, ok := n.byID[id]; ok {
		return nb.Name
	}
	return string(id)
}

// District returns the supervisorial district of id.
func (n *Normalizer) District(id ID) (int, bool) {
	nb, ok := n.byID[id]
	if !ok || nb.District == 0 {
		return 0, false
	}
	return nb.District, true
}

// InDistrict lists the neighborhoods in district d, sorted by id.
func (n *Normalizer) InDistrict(d int) []ID {
	var out []ID
	for _, id := range n.ids {
		if n.byID[id].District == d {
			out = append(out, id)
		}
	}
	return out
}

// IDs returns every canonical id, sorted.
func (n *Normalizer) IDs() []ID {
	return append([]ID(nil), n.ids...)
}

// All returns every reference row, sorted by id.
func (n *Normalizer) All() []Neighborhood {
	out := make([]Neighborhood, 0, len(n.ids))
	for _, id := range n.ids {
		out = append(out, n.byID[id])
	}
	return out
}

// Count is the number of canonical neighborhoods.
func (n *Normalizer) Count() int {
	return len(n.ids)
}

// Suggest returns up to limit canonical names closest to raw by edit
// distance. It never affects attribution.
func (n *Normalizer) Suggest(raw string, limit int) []string {
	k := n.key(raw)
	if k == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		name string
		dist int
	}
	cands := make([]candidate, 0, len(n.ids))
	for _, id := range n.ids {
		name := n.byID[id].Name
		cands = append(cands, candidate{name: name, dist: levenshtein.ComputeDistance(k, n.key(name))})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})

	// Suggestions further than half the input length away are noise.
	maxDist := len([]rune(k))/2 + 1
	out := make([]string, 0, limit)
	for _, c := range cands {
		if len(out) == limit || c.dist > maxDist {
			break
		}
		out = append(out, c.name)
	}
	return out
}
