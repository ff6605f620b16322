// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package neighborhood

// sfNeighborhoods is the San Francisco analysis neighborhood set.
//
// Population and housing units are rounded ACS five-year estimates. Parks
// and other areas with negligible residential counts carry zeros and fall
// back to the documented constants, flagged as estimated.
var sfNeighborhoods = []Neighborhood{
	{ID: "bayview_hunters_point", Name: "Bayview Hunters Point", District: 10, Population: 37600, HousingUnits: 12400},
	{ID: "bernal_heights", Name: "Bernal Heights", District: 9, Population: 26100, HousingUnits: 9900},
	{ID: "castro_upper_market", Name: "Castro/Upper Market", District: 8, Population: 21700, HousingUnits: 12600},
	{ID: "chinatown", Name: "Chinatown", District: 3, Population: 14800, HousingUnits: 7800},
	{ID: "excelsior", Name: "Excelsior", District: 11, Population: 39300, HousingUnits: 10700},
	{ID: "financial_district_south_beach", Name: "Financial District/South Beach", District: 3, Population: 22000, HousingUnits: 14300},
	{ID: "glen_park", Name: "Glen Park", District: 8, Population: 8600, HousingUnits: 3600},
	{ID: "golden_gate_park", Name: "Golden Gate Park", District: 1},
	{ID: "haight_ashbury", Name: "Haight Ashbury", District: 5, Population: 19300, HousingUnits: 9500},
	{ID: "hayes_valley", Name: "Hayes Valley", District: 5, Population: 20400, HousingUnits: 11700},
	{ID: "inner_richmond", Name: "Inner Richmond", District: 1, Population: 23500, HousingUnits: 10600},
	{ID: "inner_sunset", Name: "Inner Sunset", District: 7, Population: 29400, HousingUnits: 11900},
	{ID: "japantown", Name: "Japantown", District: 5, Population: 3700, HousingUnits: 2400},
	{ID: "lakeshore", Name: "Lakeshore", District: 7, Population: 15000, HousingUnits: 6100},
	{ID: "lincoln_park", Name: "Lincoln Park", District: 1},
	{ID: "lone_mountain_usf", Name: "Lone Mountain/USF", District: 5, Population: 18600, HousingUnits: 6900},
	{ID: "marina", Name: "Marina", District: 2, Population: 25800, HousingUnits: 15300},
	{ID: "mclaren_park", Name: "McLaren Park", District: 10},
	{ID: "mission", Name: "Mission", District: 9, Population: 58600, HousingUnits: 25300},
	{ID: "mission_bay", Name: "Mission Bay", District: 6, Population: 14300, HousingUnits: 7900},
	{ID: "nob_hill", Name: "Nob Hill", District: 3, Population: 25900, HousingUnits: 16400},
	{ID: "noe_valley", Name: "Noe Valley", District: 8, Population: 22400, HousingUnits: 10400},
	{ID: "north_beach", Name: "North Beach", District: 3, Population: 12600, HousingUnits: 7400},
	{ID: "oceanview_merced_ingleside", Name: "Oceanview/Merced/Ingleside", District: 11, Population: 27900, HousingUnits: 7900},
	{ID: "outer_mission", Name: "Outer Mission", District: 11, Population: 24700, HousingUnits: 7300},
	{ID: "outer_richmond", Name: "Outer Richmond", District: 1, Population: 45900, HousingUnits: 19100},
	{ID: "pacific_heights", Name: "Pacific Heights", District: 2, Population: 24700, HousingUnits: 14600},
	{ID: "portola", Name: "Portola", District: 9, Population: 16800, HousingUnits: 5300},
	{ID: "potrero_hill", Name: "Potrero Hill", District: 10, Population: 14600, HousingUnits: 6900},
	{ID: "presidio", Name: "Presidio", District: 2, Population: 3800, HousingUnits: 1300},
	{ID: "presidio_heights", Name: "Presidio Heights", District: 2, Population: 10600, HousingUnits: 4900},
	{ID: "russian_hill", Name: "Russian Hill", District: 2, Population: 17900, HousingUnits: 10700},
	{ID: "seacliff", Name: "Seacliff", District: 1, Population: 2500, HousingUnits: 900},
	{ID: "south_of_market", Name: "South of Market", District: 6, Population: 23900, HousingUnits: 14500},
	{ID: "sunset_parkside", Name: "Sunset/Parkside", District: 4, Population: 82100, HousingUnits: 27800},
	{ID: "tenderloin", Name: "Tenderloin", District: 5, Population: 29600, HousingUnits: 19900},
	{ID: "treasure_island", Name: "Treasure Island", District: 6, Population: 2700, HousingUnits: 900},
	{ID: "twin_peaks", Name: "Twin Peaks", District: 7, Population: 8000, HousingUnits: 4300},
	{ID: "visitacion_valley", Name: "Visitacion Valley", District: 10, Population: 18700, HousingUnits: 5500},
	{ID: "west_of_twin_peaks", Name: "West of Twin Peaks", District: 7, Population: 38500, HousingUnits: 14000},
	{ID: "western_addition", Name: "Western Addition", District: 5, Population: 23500, HousingUnits: 13300},
}

// sfAliases maps source spellings and sub-neighborhoods to canonical ids.
// Canonical display names and ids are added automatically. Names that
// straddle analysis neighborhoods, such as "Richmond" or "Haight", are left
// out so they are dropped rather than guessed.
var sfAliases = map[string]ID{
	// Source spelling variants
	"bayview":                          "bayview_hunters_point",
	"hunters point":                    "bayview_hunters_point",
	"bayview/hunters point":            "bayview_hunters_point",
	"bayview-hunters point":            "bayview_hunters_point",
	"castro":                           "castro_upper_market",
	"upper market":                     "castro_upper_market",
	"castro / upper market":            "castro_upper_market",
	"financial district":               "financial_district_south_beach",
	"south beach":                      "financial_district_south_beach",
	"fidi":                             "financial_district_south_beach",
	"financial district / south beach": "financial_district_south_beach",
	"haight-ashbury":                   "haight_ashbury",
	"lone mountain":                    "lone_mountain_usf",
	"usf":                              "lone_mountain_usf",
	"mission district":                 "mission",
	"inner mission":                    "mission",
	"oceanview":                        "oceanview_merced_ingleside",
	"ocean view":                       "oceanview_merced_ingleside",
	"ingleside":                        "oceanview_merced_ingleside",
	"omi":                              "oceanview_merced_ingleside",
	"sea cliff":                        "seacliff",
	"soma":                             "south_of_market",
	"sunset":                           "sunset_parkside",
	"outer sunset":                     "sunset_parkside",
	"central sunset":                   "sunset_parkside",
	"parkside":                         "sunset_parkside",
	"japan town":                       "japantown",
	"vis valley":                       "visitacion_valley",
	"mclaren":                          "mclaren_park",

	// Sub-neighborhoods rolled up to their analysis neighborhood
	"dogpatch":              "potrero_hill",
	"cow hollow":            "marina",
	"duboce triangle":       "castro_upper_market",
	"eureka valley":         "castro_upper_market",
	"corona heights":        "castro_upper_market",
	"cole valley":           "haight_ashbury",
	"rincon hill":           "financial_district_south_beach",
	"yerba buena":           "south_of_market",
	"india basin":           "bayview_hunters_point",
	"candlestick point":     "bayview_hunters_point",
	"crocker amazon":        "excelsior",
	"merced heights":        "oceanview_merced_ingleside",
	"ingleside heights":     "oceanview_merced_ingleside",
	"anza vista":            "lone_mountain_usf",
	"fillmore":              "western_addition",
	"alamo square":          "western_addition",
	"lower pacific heights": "pacific_heights",
	"laurel heights":        "presidio_heights",
	"telegraph hill":        "north_beach",
	"lower nob hill":        "nob_hill",
	"civic center":          "tenderloin",
	"midtown terrace":       "twin_peaks",
	"golden gate heights":   "inner_sunset",
	"parkmerced":            "lakeshore",
	"park merced":           "lakeshore",
	"stonestown":            "lakeshore",
	"st. francis wood":      "west_of_twin_peaks",
	"forest hill":           "west_of_twin_peaks",
	"west portal":           "west_of_twin_peaks",
	"miraloma park":         "west_of_twin_peaks",
	"sunnydale":             "visitacion_valley",
	"yerba buena island":    "treasure_island",
	"bernal":                "bernal_heights",
}
