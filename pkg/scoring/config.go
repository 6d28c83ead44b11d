package scoring

import "github.com/lakerisk/lakerisk/pkg/water"

// Thresholds holds the numeric cut-offs of the scoring engine.
type Thresholds struct {
	// Risk categories: score < LowBelow is Low, < MediumBelow is Medium,
	// anything else High.
	LowBelow    float64 `yaml:"low_below" json:"low_below"`
	MediumBelow float64 `yaml:"medium_below" json:"medium_below"`

	// A Result carries a warning when the best lake similarity is below this.
	WarnSimilarityBelow float64 `yaml:"warn_similarity_below" json:"warn_similarity_below"`

	// Decay constant of the similarity measure.
	DistanceScale float64 `yaml:"distance_scale" json:"distance_scale"`
}

// Defaults returns the default thresholds.
func Defaults() Thresholds {
	return Thresholds{
		LowBelow:            0.33,
		MediumBelow:         0.66,
		WarnSimilarityBelow: 0.05,
		DistanceScale:       water.DistanceScale,
	}
}

// Categorize maps an adjusted score to a risk level.
func (t Thresholds) Categorize(score float64) RiskLevel {
	switch {
	case score < t.LowBelow:
		return RiskLow
	case score < t.MediumBelow:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Categorize maps an adjusted score to a risk level with the default thresholds.
func Categorize(score float64) RiskLevel {
	return Defaults().Categorize(score)
}
