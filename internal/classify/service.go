// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package classify

// 311 service request categories.
const (
	StreetCleaning   Category = "street_cleaning"
	Graffiti         Category = "graffiti"
	UnhousedOutreach Category = "unhoused_outreach"
	AbandonedVehicle Category = "abandoned_vehicle"
	Streetlight      Category = "streetlight"
	TreeMaintenance  Category = "tree_maintenance"
	SewerWater       Category = "sewer_water"
	Noise            Category = "noise"
	ParkingTraffic   Category = "parking_traffic"
	StreetRepair     Category = "street_repair"
)

// ServiceTaxonomy is the ordered 311 category set.
var ServiceTaxonomy = Taxonomy{
	Name: "service_requests",
	Categories: []Category{
		StreetCleaning, Graffiti, UnhousedOutreach, AbandonedVehicle, Streetlight,
		TreeMaintenance, SewerWater, Noise, ParkingTraffic, StreetRepair, Other,
	},
}

// ServiceRules is the 311 decision list.
//
// Cleaning sits above street repair so "Sidewalk Cleaning" is not read as a
// sidewalk defect. Tree keywords are multi-word because "street" and
// "streets" contain "tree" and "trees".
var ServiceRules = []Rule{
	{UnhousedOutreach, []string{"encampment", "homeless", "unhoused"}},
	{Graffiti, []string{"graffiti", "illegal posting"}},
	{AbandonedVehicle, []string{"abandoned vehicle", "abandoned car"}},
	{Streetlight, []string{"streetlight", "street light"}},
	{StreetCleaning, []string{"cleaning", "street sweep", "litter", "dumping", "bulky item", "human waste", "needle", "garbage", "debris"}},
	{TreeMaintenance, []string{"tree maintenance", "tree removal", "tree planting", "tree trimming", "fallen tree", "damaged tree", "urban forestry"}},
	{SewerWater, []string{"sewer", "water", "flooding", "catch basin", "hydrant"}},
	{Noise, []string{"noise"}},
	{ParkingTraffic, []string{"parking", "blocked driveway", "double park", "vehicle", "traffic"}},
	{StreetRepair, []string{"street defect", "pothole", "sidewalk", "curb", "pavement", "street repair"}},
}

//nolint:gochecknoinits // label registration must precede any lookup
func init() {
	registerLabels(map[Category]string{
		StreetCleaning:   "Street & Sidewalk Cleaning",
		Graffiti:         "Graffiti",
		UnhousedOutreach: "Unhoused Outreach",
		AbandonedVehicle: "Abandoned Vehicles",
		Streetlight:      "Streetlights",
		TreeMaintenance:  "Tree Maintenance",
		SewerWater:       "Sewer & Water",
		Noise:            "Noise",
		ParkingTraffic:   "Parking & Traffic",
		StreetRepair:     "Street & Sidewalk Repair",
	})
}

var serviceClassifier = NewClassifier(ServiceRules, Other)

// ServiceRequest classifies a 311 service name or subtype.
func ServiceRequest(raw string) Category {
	return serviceClassifier.Classify(raw)
}
