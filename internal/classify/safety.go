// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package classify

// Safety incident categories.
const (
	PersonalSafety  Category = "personal_safety"
	Property        Category = "property"
	VehicleTheft    Category = "vehicle_theft"
	TrafficSafety   Category = "traffic_safety"
	PublicOrder     Category = "public_order"
	Fire            Category = "fire"
	MedicalResponse Category = "medical_response"
)

// SafetySource identifies which feed a safety record came from.
type SafetySource string

const (
	SourcePolice SafetySource = "police"
	SourceFire   SafetySource = "fire"
)

// SafetyTaxonomy is the ordered safety category set.
var SafetyTaxonomy = Taxonomy{
	Name: "safety",
	Categories: []Category{
		PersonalSafety, Property, VehicleTheft, TrafficSafety, PublicOrder,
		Fire, MedicalResponse, Other,
	},
}

// SafetyRules is the safety decision list.
//
// Vehicle theft precedes property ("theft") and traffic ("vehicle").
// Personal safety precedes fire because "firearm" contains "fire".
// Medical keywords avoid a bare "ems", which occurs inside "problems".
var SafetyRules = []Rule{
	{VehicleTheft, []string{"motor vehicle theft", "vehicle theft", "stolen vehicle", "auto theft", "vehicle, stolen", "recovered vehicle"}},
	{PersonalSafety, []string{"assault", "robbery", "homicide", "weapon", "firearm", "shooting", "shots fired", "battery", "rape", "sex offense", "kidnapping", "human trafficking", "stabbing", "threat"}},
	{Fire, []string{"fire", "arson", "smoke", "explosion", "burning"}},
	{MedicalResponse, []string{"medical", "rescue", "ems call", "overdose", "ambulance", "injur", "cardiac"}},
	{Property, []string{"burglary", "larceny", "theft", "vandalism", "malicious mischief", "fraud", "forgery", "embezzlement", "stolen property", "shoplifting"}},
	{TrafficSafety, []string{"traffic", "collision", "vehicle", "hit and run", "driving", "accident"}},
	{PublicOrder, []string{"drug", "narcotic", "disorderly", "trespass", "warrant", "liquor", "prostitution", "gambling", "suspicious", "civil sidewalk"}},
}

//nolint:gochecknoinits // label registration must precede any lookup
func init() {
	registerLabels(map[Category]string{
		PersonalSafety:  "Personal Safety",
		Property:        "Property",
		VehicleTheft:    "Vehicle Theft",
		TrafficSafety:   "Traffic Safety",
		PublicOrder:     "Public Order",
		Fire:            "Fire",
		MedicalResponse: "Medical Response",
	})
}

var safetyClassifier = NewClassifier(SafetyRules, Other)

// Safety classifies an incident category or situation text. Blank input
// means "other" in the police feed but "fire" in the fire feed, where a
// missing situation is recorded on fire responses.
func Safety(raw string, src SafetySource) Category {
	if src == SourceFire {
		return safetyClassifier.ClassifyOr(raw, Fire)
	}
	return safetyClassifier.Classify(raw)
}
