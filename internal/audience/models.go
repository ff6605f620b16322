// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package audience holds the publisher and campaign records the matching
// engine reads: each publisher's declared audience, rate card and platform
// reach, and each campaign's targeting.
package audience

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/resonate/internal/validation"
)

// ErrMalformedProfile is matched by *MalformedProfileError.
var ErrMalformedProfile = errors.New("malformed publisher profile")

// MalformedProfileError names the publisher and the missing or invalid
// fields.
type MalformedProfileError struct {
	PublisherID string
	Fields      []string
	Err         error
}

func (e *MalformedProfileError) Error() string {
	return fmt.Sprintf("malformed profile for publisher %q: %v", e.PublisherID, e.Err)
}

func (e *MalformedProfileError) Unwrap() error { return e.Err }

// Is reports true for ErrMalformedProfile.
func (e *MalformedProfileError) Is(target error) bool {
	return target == ErrMalformedProfile
}

// VerificationLevel is how much of a profile has been checked against
// connected platforms.
type VerificationLevel string

const (
	SelfReported      VerificationLevel = "self_reported"
	PartiallyVerified VerificationLevel = "partially_verified"
	Verified          VerificationLevel = "verified"
)

// GeographicProfile is where an audience lives. Neighborhood values may be
// any spelling the neighborhood normalizer accepts.
type GeographicProfile struct {
	Citywide      bool     `json:"citywide"`
	Neighborhoods []string `json:"neighborhoods,omitempty"`
	Districts     []int    `json:"districts,omitempty" validate:"dive,min=1,max=11"`
	ZipCodes      []string `json:"zip_codes,omitempty" validate:"dive,numeric,len=5"`
}

// DemographicProfile describes languages and age ranges.
type DemographicProfile struct {
	Languages []string `json:"languages,omitempty"`
	AgeRanges []string `json:"age_ranges,omitempty"`
}

// EconomicProfile describes income and housing.
type EconomicProfile struct {
	IncomeLevels    []string `json:"income_levels,omitempty"`
	HousingStatus   []string `json:"housing_status,omitempty"`
	BenefitPrograms []string `json:"benefit_programs,omitempty"`
}

// Empty reports whether no facet carries data.
func (e *EconomicProfile) Empty() bool {
	return e == nil || len(e.IncomeLevels)+len(e.HousingStatus)+len(e.BenefitPrograms) == 0
}

// CulturalProfile describes community identity.
type CulturalProfile struct {
	Ethnicities            []string `json:"ethnicities,omitempty"`
	ImmigrationGenerations []string `json:"immigration_generations,omitempty"`
	CommunityAffiliations  []string `json:"community_affiliations,omitempty"`
	IdentityFactors        []string `json:"identity_factors,omitempty"`
}

// AudienceProfile is a publisher's declared audience. Geographic and
// demographic data are required; economic and cultural data are optional.
type AudienceProfile struct {
	Geographic        *GeographicProfile  `json:"geographic" validate:"required"`
	Demographic       *DemographicProfile `json:"demographic" validate:"required"`
	Economic          *EconomicProfile    `json:"economic,omitempty"`
	Cultural          *CulturalProfile    `json:"cultural,omitempty"`
	Interests         []string            `json:"interests,omitempty"`
	Description       string              `json:"description,omitempty"`
	VerificationLevel VerificationLevel   `json:"verification_level" validate:"omitempty,oneof=self_reported partially_verified verified"`
}

// Verification returns the level, treating blank as self-reported.
func (a *AudienceProfile) Verification() VerificationLevel {
	if a == nil || a.VerificationLevel == "" {
		return SelfReported
	}
	return a.VerificationLevel
}

// RateEntry is one priced deliverable on a rate card.
type RateEntry struct {
	Deliverable string  `json:"deliverable" validate:"required,slug"`
	Platform    string  `json:"platform,omitempty"`
	Price       float64 `json:"price" validate:"finite,gte=0"`
	Description string  `json:"description,omitempty"`
}

// PlatformSnapshot is the last sync of one connected channel.
type PlatformSnapshot struct {
	Platform       string    `json:"platform" validate:"required"`
	Handle         string    `json:"handle,omitempty"`
	Followers      int       `json:"followers" validate:"gte=0"`
	EngagementRate float64   `json:"engagement_rate" validate:"finite,gte=0,lte=1"` // fraction, 0.04 = 4%
	SyncedAt       time.Time `json:"synced_at,omitempty"`
}

// Publisher is a community or ethnic media outlet.
type Publisher struct {
	ID               string             `json:"id" validate:"required"`
	Name             string             `json:"name"`
	Audience         *AudienceProfile   `json:"audience" validate:"required"`
	RateCard         []RateEntry        `json:"rate_card" validate:"dive"`
	Platforms        []PlatformSnapshot `json:"platforms,omitempty" validate:"dive"`
	PrintCirculation int                `json:"print_circulation,omitempty" validate:"gte=0"`
	UpdatedAt        time.Time          `json:"updated_at,omitempty"`
}

// Validate reports a *MalformedProfileError when required sub-objects are
// missing or values are out of range.
func (p *Publisher) Validate() error {
	verr := validation.ValidateStruct(p)
	if verr == nil {
		return nil
	}
	fields := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field())
	}
	return &MalformedProfileError{PublisherID: p.ID, Fields: fields, Err: verr}
}

// TotalFollowers sums followers across connected platforms.
func (p *Publisher) TotalFollowers() int {
	total := 0
	for _, s := range p.Platforms {
		total += s.Followers
	}
	return total
}

// Reach is total followers plus print circulation.
func (p *Publisher) Reach() int {
	return p.TotalFollowers() + p.PrintCirculation
}

// EngagementRate is the follower-weighted mean engagement across
// platforms, or 0 without followers.
func (p *Publisher) EngagementRate() float64 {
	followers := 0
	weighted := 0.0
	for _, s := range p.Platforms {
		followers += s.Followers
		weighted += float64(s.Followers) * s.EngagementRate
	}
	if followers == 0 {
		return 0
	}
	return weighted / float64(followers)
}

// NormalizeValues lower-cases, trims and de-duplicates values, keeping
// first-seen order. Blank values are dropped.
func NormalizeValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// UniqueInts returns the distinct values in ascending order, or nil when
// values is empty.
func UniqueInts(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
