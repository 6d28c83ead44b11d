// Package features turns a species, a lake baseline and a caller's reading
// into the named columns the classifier's preprocessor expects.
package features

import (
	"math"

	"github.com/lakerisk/lakerisk/pkg/reference"
	"github.com/lakerisk/lakerisk/pkg/water"
)

// SyntheticWaterbody is the waterbody name used when no lake is given.
const SyntheticWaterbody = "Generic"

// DerivedColumns are computed after the base columns, in this order.
var DerivedColumns = []string{
	"temp_pref_range",
	"wb_ph_range",
	"wb_temp_range",
	"temp_in_pref_range",
	"fish_ph_pref",
	"ph_difference",
}

// Vector is one model input row.
type Vector struct {
	Numeric     map[string]float64 `json:"numeric"`
	Categorical map[string]string  `json:"categorical"`

	// Approximate is set when the lake columns came from a synthetic
	// baseline rather than a monitored lake.
	Approximate bool `json:"approximate,omitempty"`
}

// Waterbody returns the waterbody_name column.
func (v Vector) Waterbody() string {
	return v.Categorical["waterbody_name"]
}

// Build assembles the row for one species and one lake. A nil lake yields a
// synthetic baseline spread around the reading and an Approximate vector.
func Build(sp reference.SpeciesRecord, lake *reference.LakeBaseline, r water.Reading) Vector {
	v := Vector{
		Numeric:     make(map[string]float64, 32+len(sp.Traits)),
		Categorical: make(map[string]string, 12+len(sp.Attributes)),
	}

	for k, x := range sp.Traits {
		v.Numeric[k] = x
	}
	for k, s := range sp.Attributes {
		v.Categorical[k] = s
	}
	v.Categorical["species"] = sp.Name
	v.Categorical["common_name"] = sp.CommonName
	v.Categorical["kingdom"] = sp.Kingdom
	v.Categorical["phylum"] = sp.Phylum
	v.Categorical["class"] = sp.Class
	v.Categorical["order"] = sp.Order
	v.Categorical["family"] = sp.Family
	v.Categorical["genus"] = sp.Genus
	v.Categorical["status"] = sp.Status
	v.Categorical["feeding_type"] = sp.FeedingType
	v.Numeric["temp_pref_min"] = sp.TempPrefMin
	v.Numeric["temp_pref_max"] = sp.TempPrefMax

	if lake != nil {
		b := lake.Baseline
		v.Categorical["waterbody_name"] = lake.Name
		setBand(v.Numeric, "wb_ph", b.PH, b.PH)
		setBand(v.Numeric, "wb_salinity", b.Salinity, b.Salinity)
		setBand(v.Numeric, "wb_do", b.DissolvedOxygen, b.DissolvedOxygen)
		setBand(v.Numeric, "wb_bod", b.BOD, b.BOD)
		setBand(v.Numeric, "wb_turbidity", b.Turbidity, b.Turbidity)
		setBand(v.Numeric, "wb_temp", b.Temperature, b.Temperature)
	} else {
		v.Approximate = true
		v.Categorical["waterbody_name"] = SyntheticWaterbody
		setBand(v.Numeric, "wb_ph", r.PH-0.5, r.PH+0.5)
		setBand(v.Numeric, "wb_salinity", floor0(r.Salinity-1), r.Salinity+1)
		setBand(v.Numeric, "wb_do", floor0(r.DissolvedOxygen-1), r.DissolvedOxygen+1)
		setBand(v.Numeric, "wb_bod", floor0(r.BOD-1), r.BOD+1)
		setBand(v.Numeric, "wb_turbidity", floor0(r.Turbidity-10), r.Turbidity+10)
		setBand(v.Numeric, "wb_temp", r.Temperature-2, r.Temperature+2)
	}

	v.Numeric["input_temp"] = r.Temperature
	v.Numeric["input_ph"] = r.PH
	v.Numeric["input_salinity"] = r.Salinity
	v.Numeric["input_do"] = r.DissolvedOxygen
	v.Numeric["input_bod"] = r.BOD
	v.Numeric["input_turbidity"] = r.Turbidity

	derive(v.Numeric)
	return v
}

// BuildBatch builds one row per lake, in table order.
func BuildBatch(sp reference.SpeciesRecord, lakes []reference.LakeBaseline, r water.Reading) []Vector {
	out := make([]Vector, len(lakes))
	for i := range lakes {
		out[i] = Build(sp, &lakes[i], r)
	}
	return out
}

// BuildFor looks the species up in store first. The error wraps
// reference.ErrSpeciesNotFound when the species is unknown.
func BuildFor(store *reference.Store, species string, lake *reference.LakeBaseline, r water.Reading) (Vector, error) {
	sp, err := store.Species(species)
	if err != nil {
		return Vector{}, err
	}
	return Build(sp, lake, r), nil
}

func derive(n map[string]float64) {
	n["temp_pref_range"] = n["temp_pref_max"] - n["temp_pref_min"]
	n["wb_ph_range"] = n["wb_ph_max"] - n["wb_ph_min"]
	n["wb_temp_range"] = n["wb_temp_max"] - n["wb_temp_min"]

	in := n["input_temp"]
	if in >= n["temp_pref_min"] && in <= n["temp_pref_max"] {
		n["temp_in_pref_range"] = 1
	} else {
		n["temp_in_pref_range"] = 0
	}

	pref := (n["wb_ph_min"] + n["wb_ph_max"]) / 2
	n["fish_ph_pref"] = pref
	n["ph_difference"] = math.Abs(pref - n["input_ph"])
}

func setBand(n map[string]float64, prefix string, lo, hi float64) {
	n[prefix+"_min"] = lo
	n[prefix+"_max"] = hi
}

func floor0(x float64) float64 {
	return math.Max(0, x)
}
