// Package model runs the pre-trained invasion classifier: a fitted column
// preprocessor feeding an XGBoost tree ensemble, held in a registry of
// named variants.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/lakerisk/lakerisk/pkg/features"
)

// ErrModelUnavailable is returned for a variant that is unknown or failed to load.
var ErrModelUnavailable = errors.New("model unavailable")

// ImportanceKind selects how FeatureImportance attributes the model.
type ImportanceKind string

const (
	// ImportanceGlobal is the average split gain per transformed feature.
	ImportanceGlobal ImportanceKind = "global"
	// ImportanceLocal is the mean absolute path attribution over given rows.
	ImportanceLocal ImportanceKind = "local"
)

// Adapter is the interface every classifier variant implements.
type Adapter interface {
	// Name returns the variant identifier.
	Name() string
	// Predict returns one positive-class probability per row, in row order.
	Predict(rows []features.Vector) ([]float64, error)
	// FeatureImportance returns importance keyed by transformed feature name.
	FeatureImportance(kind ImportanceKind, rows []features.Vector) (map[string]float64, error)
}

// Variant is an Adapter backed by a Preprocessor and a Booster.
type Variant struct {
	name    string
	pre     *Preprocessor
	booster *Booster
	names   []string
}

// NewVariant pairs a preprocessor with a booster. The preprocessor's output
// width must match the model's declared feature count when one is declared.
func NewVariant(name string, pre *Preprocessor, booster *Booster) (*Variant, error) {
	if pre == nil || booster == nil {
		return nil, fmt.Errorf("variant %q needs a preprocessor and a booster", name)
	}
	if n := booster.NumFeature(); n > 0 && n != pre.Width() {
		return nil, fmt.Errorf("%w: variant %q model expects %d features, preprocessor yields %d",
			ErrPreprocessorMismatch, name, n, pre.Width())
	}
	return &Variant{
		name:    name,
		pre:     pre,
		booster: booster,
		names:   pre.OutputNames(),
	}, nil
}

func (v *Variant) Name() string { return v.name }

func (v *Variant) Predict(rows []features.Vector) ([]float64, error) {
	xs, err := v.pre.TransformBatch(rows)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		p := v.booster.Probability(x)
		if math.IsNaN(p) {
			return nil, fmt.Errorf("row %d: model produced NaN", i)
		}
		out[i] = p
	}
	return out, nil
}

func (v *Variant) FeatureImportance(kind ImportanceKind, rows []features.Vector) (map[string]float64, error) {
	switch kind {
	case ImportanceGlobal:
		gain := v.booster.Gain()
		out := make(map[string]float64, len(gain))
		for f, g := range gain {
			out[v.featureName(f)] = g
		}
		return out, nil

	case ImportanceLocal:
		if len(rows) == 0 {
			return nil, fmt.Errorf("local importance needs at least one row")
		}
		xs, err := v.pre.TransformBatch(rows)
		if err != nil {
			return nil, err
		}
		width := len(v.names)
		sum := make([]float64, width)
		for _, x := range xs {
			contrib := v.booster.Contributions(x, width)
			for f := 0; f < width; f++ {
				sum[f] += math.Abs(contrib[f])
			}
		}
		out := make(map[string]float64, width)
		for f, s := range sum {
			out[v.names[f]] = s / float64(len(xs))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown importance kind %q", kind)
	}
}

// featureName maps a model feature index onto the preprocessor's output
// name, keeping the booster's name for indices outside the preprocessor.
func (v *Variant) featureName(i int) string {
	if i >= 0 && i < len(v.names) {
		return v.names[i]
	}
	return v.booster.FeatureName(i)
}
