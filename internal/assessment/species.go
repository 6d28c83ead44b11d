package assessment

import (
	"math"

	"github.com/lakerisk/lakerisk/pkg/reference"
)

// SpeciesInfo is the public summary of a species. Traits missing from the
// dataset are nil rather than NaN so the view always encodes as JSON.
type SpeciesInfo struct {
	Species          string             `json:"species"`
	CommonName       string             `json:"common_name,omitempty"`
	Family           string             `json:"family,omitempty"`
	Order            string             `json:"order,omitempty"`
	Status           string             `json:"status,omitempty"`
	FeedingType      string             `json:"feeding_type,omitempty"`
	TrophicLevel     *float64           `json:"trophic_level"`
	TemperatureRange Range              `json:"temperature_range"`
	LengthMax        *float64           `json:"length_max"`
	WeightMax        *float64           `json:"weight_max"`
	RecordsCount     int                `json:"records_count"`
	Traits           map[string]float64 `json:"traits,omitempty"`
}

// Range is an optional min/max pair.
type Range struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func newSpeciesInfo(sp reference.SpeciesRecord, records int) *SpeciesInfo {
	info := &SpeciesInfo{
		Species:      sp.Name,
		CommonName:   sp.CommonName,
		Family:       sp.Family,
		Order:        sp.Order,
		Status:       sp.Status,
		FeedingType:  sp.FeedingType,
		TrophicLevel: trait(sp, "trophic_lvl"),
		TemperatureRange: Range{
			Min: finite(sp.TempPrefMin),
			Max: finite(sp.TempPrefMax),
		},
		LengthMax:    trait(sp, "length_max"),
		WeightMax:    trait(sp, "weight_max"),
		RecordsCount: records,
	}
	for k, v := range sp.Traits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if info.Traits == nil {
			info.Traits = make(map[string]float64, len(sp.Traits))
		}
		info.Traits[k] = v
	}
	return info
}

func trait(sp reference.SpeciesRecord, key string) *float64 {
	v, ok := sp.Traits[key]
	if !ok {
		return nil
	}
	return finite(v)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
