package main

import (
	"github.com/spf13/pflag"

	"github.com/lakerisk/lakerisk/pkg/water"
)

// defaultReading is used for any parameter not given on the command line.
var defaultReading = water.Reading{
	PH:              7.5,
	Salinity:        0,
	DissolvedOxygen: 6,
	BOD:             2,
	Turbidity:       10,
	Temperature:     27,
}

// addReadingFlags registers the six water-quality flags on fs.
func addReadingFlags(fs *pflag.FlagSet, r *water.Reading) {
	fs.Float64Var(&r.Temperature, "temperature", defaultReading.Temperature, "Water temperature (°C)")
	fs.Float64Var(&r.PH, "ph", defaultReading.PH, "pH")
	fs.Float64Var(&r.Salinity, "salinity", defaultReading.Salinity, "Salinity (ppt)")
	fs.Float64Var(&r.DissolvedOxygen, "do", defaultReading.DissolvedOxygen, "Dissolved oxygen (mg/L)")
	fs.Float64Var(&r.BOD, "bod", defaultReading.BOD, "Biochemical oxygen demand (mg/L)")
	fs.Float64Var(&r.Turbidity, "turbidity", defaultReading.Turbidity, "Turbidity (NTU)")
}
