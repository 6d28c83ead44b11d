package reference

import (
	"strings"

	"github.com/lakerisk/lakerisk/pkg/water"
)

// LuzonLakes returns the built-in table of monitored lakes.
// Each call returns a fresh slice.
func LuzonLakes() []LakeBaseline {
	return []LakeBaseline{
		{Name: "Laguna de Bay", Region: "IV-A", Latitude: 14.4, Longitude: 121.3,
			Baseline: water.Reading{PH: 9.12, Salinity: 0.746, DissolvedOxygen: 7.54, BOD: 1.93, Turbidity: 161.88, Temperature: 28.5}},
		{Name: "Lake Taal", Region: "IV-A", Latitude: 14.0, Longitude: 120.98,
			Baseline: water.Reading{PH: 8.32, Salinity: 0.85, DissolvedOxygen: 5.61, BOD: 3.82, Turbidity: 28.0, Temperature: 25.5}},
		{Name: "Sampaloc Lake", Region: "IV-A", Latitude: 14.1, Longitude: 121.18,
			Baseline: water.Reading{PH: 7.9, Salinity: 0.1, DissolvedOxygen: 3.1, BOD: 8.0, Turbidity: 28.0, Temperature: 27.8}},
		{Name: "Yambo Lake", Region: "IV-A", Latitude: 14.15, Longitude: 121.2,
			Baseline: water.Reading{PH: 7.9, Salinity: 0.1, DissolvedOxygen: 5.0, BOD: 2.5, Turbidity: 9.8, Temperature: 26.5}},
		{Name: "Pandin Lake", Region: "IV-A", Latitude: 14.12, Longitude: 121.19,
			Baseline: water.Reading{PH: 7.8, Salinity: 0.1, DissolvedOxygen: 7.3, BOD: 2.0, Turbidity: 6.5, Temperature: 25.8}},
		{Name: "Mohicap Lake", Region: "IV-A", Latitude: 14.11, Longitude: 121.17,
			Baseline: water.Reading{PH: 7.7, Salinity: 0.1, DissolvedOxygen: 4.1, BOD: 6.8, Turbidity: 10.0, Temperature: 26.2}},
		{Name: "Palakpakin Lake", Region: "IV-A", Latitude: 14.13, Longitude: 121.21,
			Baseline: water.Reading{PH: 8.0, Salinity: 0.1, DissolvedOxygen: 5.0, BOD: 3.1, Turbidity: 28.0, Temperature: 24.2}},
		{Name: "Nabao Lake", Region: "IV-A", Latitude: 14.09, Longitude: 121.16,
			Baseline: water.Reading{PH: 6.33, Salinity: 0.25, DissolvedOxygen: 3.14, BOD: 3.0, Turbidity: 3.5, Temperature: 28.0}},
		{Name: "Tadlac Lake", Region: "IV-A", Latitude: 14.08, Longitude: 121.15,
			Baseline: water.Reading{PH: 7.44, Salinity: 0.361, DissolvedOxygen: 7.27, BOD: 2.33, Turbidity: 3.5, Temperature: 29.5}},
		{Name: "Tikub Lake", Region: "IV-A", Latitude: 14.16, Longitude: 121.22,
			Baseline: water.Reading{PH: 8.08, Salinity: 0.1, DissolvedOxygen: 5.53, BOD: 2.3, Turbidity: 3.5, Temperature: 30.4}},
		{Name: "Lake Buhi", Region: "V", Latitude: 13.43, Longitude: 123.52,
			Baseline: water.Reading{PH: 7.95, Salinity: 0.7, DissolvedOxygen: 6.89, BOD: 1.76, Turbidity: 6.18, Temperature: 28.5}},
		{Name: "Bunot Lake", Region: "IV-A", Latitude: 14.14, Longitude: 121.23,
			Baseline: water.Reading{PH: 7.2, Salinity: 0.1, DissolvedOxygen: 7.7, BOD: 10.2, Turbidity: 9.0, Temperature: 28.5}},
	}
}

// lakeNameVariants maps spellings found in occurrence localities onto
// canonical lake names. Canonical names map onto themselves.
var lakeNameVariants = map[string]string{
	"Laguna de Bay":               "Laguna de Bay",
	"Laguna de Bay, Philippines":  "Laguna de Bay",
	"Laguna de Bay, PH":           "Laguna de Bay",
	"Laguna de Bay (East Bay)":    "Laguna de Bay",
	"Laguna de Bay (Central Bay)": "Laguna de Bay",
	"Laguna de Bay (Station 2)":   "Laguna de Bay",
	"Laguna de Bay (Station 3)":   "Laguna de Bay",
	"Laguna Lake":                 "Laguna de Bay",
	"Laguna Lake, Philippines":    "Laguna de Bay",
	"Laguna Lake (Laguna)":        "Laguna de Bay",
	"Lake Taal":                   "Lake Taal",
	"Taal Lake":                   "Lake Taal",
	"Lake Taal, Philippines":      "Lake Taal",
	"Lake Taal, Batangas":         "Lake Taal",
	"Lake Taal (Batangas)":        "Lake Taal",
	"Taal Lake, Philippines":      "Lake Taal",
	"Taal Freshwater Pond":        "Lake Taal",
	"Sampaloc Lake":               "Sampaloc Lake",
	"Lake Sampaloc":               "Sampaloc Lake",
	"Lake Sampaloc, Quezon":       "Sampaloc Lake",
	"Lake Sampaloc (San Pablo)":   "Sampaloc Lake",
	"Lake Sampaloc, Philippines":  "Sampaloc Lake",
	"Lake Buhi":                   "Lake Buhi",
	"Lake Buhi, Camarines Sur":    "Lake Buhi",
	"Lake Buhi, Philippines":      "Lake Buhi",
	"Buhi Lake":                   "Lake Buhi",
	"Yambo Lake":                  "Yambo Lake",
	"Lake Yambo, Laguna":          "Yambo Lake",
	"Pandin Lake":                 "Pandin Lake",
	"Lake Pandin, Laguna":         "Pandin Lake",
	"Palakpakin Lake":             "Palakpakin Lake",
	"Lake Palakpakin, Laguna":     "Palakpakin Lake",
	"Bunot Lake":                  "Bunot Lake",
	"Lake Bunot, Laguna":          "Bunot Lake",
	"Mohicap Lake":                "Mohicap Lake",
	"Lake Mohicap":                "Mohicap Lake",
	"Nabao Lake":                  "Nabao Lake",
	"Lake Nabao":                  "Nabao Lake",
	"Tadlac Lake":                 "Tadlac Lake",
	"Lake Tadlac":                 "Tadlac Lake",
	"Tikub Lake":                  "Tikub Lake",
	"Lake Tikub":                  "Tikub Lake",
}

// NormalizeLakeName maps a lake name variant onto its canonical name.
// Underscores are read as spaces. Variants missing from the table are
// reported as unknown rather than guessed.
func NormalizeLakeName(name string) (string, bool) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	canonical, ok := lakeNameVariants[name]
	return canonical, ok
}
