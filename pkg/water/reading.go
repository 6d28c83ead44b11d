// Package water defines the environmental reading shared by every part of
// the risk pipeline and the similarity measure between two readings.
package water

import (
	"fmt"
	"math"
)

// Reading is one set of water-quality measurements, either supplied by a
// caller or taken from a lake baseline.
type Reading struct {
	PH              float64 `json:"ph" yaml:"ph"`
	Salinity        float64 `json:"salinity" yaml:"salinity"`                 // ppt
	DissolvedOxygen float64 `json:"dissolved_oxygen" yaml:"dissolved_oxygen"` // mg/L
	BOD             float64 `json:"bod" yaml:"bod"`                           // mg/L
	Turbidity       float64 `json:"turbidity" yaml:"turbidity"`               // NTU
	Temperature     float64 `json:"temperature" yaml:"temperature"`           // °C
}

// Vector returns the reading in canonical order:
// pH, salinity, dissolved oxygen, BOD, turbidity, temperature.
func (r Reading) Vector() [6]float64 {
	return [6]float64{r.PH, r.Salinity, r.DissolvedOxygen, r.BOD, r.Turbidity, r.Temperature}
}

// Range is an inclusive bound for one parameter.
type Range struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Ranges lists the accepted input range per parameter, in canonical order.
var Ranges = [6]Range{
	{Name: "ph", Min: 0, Max: 14},
	{Name: "salinity", Min: 0, Max: 10},
	{Name: "dissolved_oxygen", Min: 0, Max: 15},
	{Name: "bod", Min: 0, Max: 20},
	{Name: "turbidity", Min: 0, Max: 500},
	{Name: "temperature", Min: 0, Max: 40},
}

// Validate reports the first parameter that is not finite or lies outside
// its accepted range. The scoring pipeline itself never calls this; request
// layers do.
func (r Reading) Validate() error {
	for i, v := range r.Vector() {
		rg := Ranges[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", rg.Name)
		}
		if v < rg.Min || v > rg.Max {
			return fmt.Errorf("%s %.3g outside [%g, %g]", rg.Name, v, rg.Min, rg.Max)
		}
	}
	return nil
}
