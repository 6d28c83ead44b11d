// Package scoring implements the lakerisk scoring engine.
// It ranks monitored lakes by the classifier's colonization probability
// discounted by how closely each lake resembles the caller's reading.
package scoring

import (
	"github.com/lakerisk/lakerisk/pkg/presence"
	"github.com/lakerisk/lakerisk/pkg/water"
)

// Request is one scoring call.
type Request struct {
	Species string        `json:"species"`
	Reading water.Reading `json:"reading"`
	Variant string        `json:"variant,omitempty"` // empty selects the default variant
}

// Result is the complete output of scoring a species against every lake.
// Immutable once computed.
type Result struct {
	Species     string        `json:"species"`
	Variant     string        `json:"variant"`
	Reading     water.Reading `json:"input_parameters"`
	Predictions []Prediction  `json:"predictions"` // adjusted score descending
	Warning     string        `json:"warning,omitempty"`
}

// Prediction is the risk assessment for one lake.
type Prediction struct {
	LakeName      string            `json:"lake_name"`
	Region        string            `json:"region"`
	Latitude      float64           `json:"latitude"`
	Longitude     float64           `json:"longitude"`
	RawScore      float64           `json:"raw_score"`      // classifier probability
	AdjustedScore float64           `json:"adjusted_score"` // raw score times similarity
	RiskLevel     RiskLevel         `json:"risk_level"`
	Similarity    float64           `json:"similarity"`
	Presence      presence.Presence `json:"presence"`
}

// Top returns the highest-ranked prediction.
func (r *Result) Top() (Prediction, bool) {
	if len(r.Predictions) == 0 {
		return Prediction{}, false
	}
	return r.Predictions[0], true
}

// RiskLevel is the coarse category of an adjusted score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// LowSimilarityWarning is attached to a Result when no lake resembles the
// reading closely enough.
const LowSimilarityWarning = "Your inputs differ significantly from all lake baselines. Predictions may be unreliable."

// SweepRow is one species' best lake in a cross-species risk table.
type SweepRow struct {
	Species       string    `json:"species"`
	CommonName    string    `json:"common_name,omitempty"`
	Family        string    `json:"family,omitempty"`
	Status        string    `json:"status,omitempty"`
	LakeName      string    `json:"lake_name"`
	RawScore      float64   `json:"raw_score"`
	AdjustedScore float64   `json:"adjusted_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
}
