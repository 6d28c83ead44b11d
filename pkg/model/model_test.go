package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakerisk/lakerisk/pkg/features"
)

const testPreprocessor = `{
  "numeric": [
    {"name": "input_temp", "mean": 25, "scale": 5},
    {"name": "wb_ph_min", "mean": 8, "scale": 1}
  ],
  "categorical": [
    {"name": "status", "categories": ["invasive", "native"]}
  ]
}`

// Two trees over four transformed features:
//
//	tree 0: f0 < 0 ? -0.4 : (f2 < 0.5 ? 0.1 : 0.6)
//	tree 1: f1 < 0.5 ? 0.2 : -0.2
const testModel = `{
  "learner": {
    "learner_model_param": {"base_score": "[5E-1]", "num_feature": "4"},
    "objective": {"name": "binary:logistic"},
    "gradient_booster": {
      "name": "gbtree",
      "model": {
        "trees": [
          {
            "left_children":    [1, -1, 3, -1, -1],
            "right_children":   [2, -1, 4, -1, -1],
            "split_indices":    [0, 0, 2, 0, 0],
            "split_conditions": [0, -0.4, 0.5, 0.1, 0.6],
            "default_left":     [1, 0, 0, 0, 0],
            "loss_changes":     [4, 0, 2, 0, 0],
            "sum_hessian":      [10, 4, 6, 3, 3]
          },
          {
            "left_children":    [1, -1, -1],
            "right_children":   [2, -1, -1],
            "split_indices":    [1, 0, 0],
            "split_conditions": [0.5, 0.2, -0.2],
            "default_left":     [false, false, false],
            "loss_changes":     [1, 0, 0],
            "sum_hessian":      [10, 5, 5]
          }
        ]
      }
    }
  }
}`

func row(temp, ph float64, status string) features.Vector {
	return features.Vector{
		Numeric:     map[string]float64{"input_temp": temp, "wb_ph_min": ph},
		Categorical: map[string]string{"status": status},
	}
}

func testVariant(t *testing.T) *Variant {
	t.Helper()
	pre, err := LoadPreprocessor(strings.NewReader(testPreprocessor))
	require.NoError(t, err)
	b, err := LoadBooster(strings.NewReader(testModel))
	require.NoError(t, err)
	v, err := NewVariant("primary", pre, b)
	require.NoError(t, err)
	return v
}

func sigmoidOf(m float64) float64 { return 1 / (1 + math.Exp(-m)) }

func TestPreprocessorTransform(t *testing.T) {
	pre, err := LoadPreprocessor(strings.NewReader(testPreprocessor))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"num__input_temp", "num__wb_ph_min", "cat__status_invasive", "cat__status_native",
	}, pre.OutputNames())

	x, err := pre.Transform(row(30, 9, "native"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0, 1}, x)

	x, err = pre.Transform(row(25, 8, "unheard-of"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, x, "unknown category encodes as zeros")
}

func TestPreprocessorMissingColumn(t *testing.T) {
	pre, err := LoadPreprocessor(strings.NewReader(testPreprocessor))
	require.NoError(t, err)

	v := row(30, 9, "native")
	delete(v.Numeric, "wb_ph_min")
	_, err = pre.Transform(v)
	assert.ErrorIs(t, err, ErrPreprocessorMismatch)

	v = row(30, 9, "native")
	delete(v.Categorical, "status")
	_, err = pre.TransformBatch([]features.Vector{row(1, 1, "x"), v})
	assert.ErrorIs(t, err, ErrPreprocessorMismatch)
}

func TestLoadPreprocessorRejectsDuplicates(t *testing.T) {
	_, err := LoadPreprocessor(strings.NewReader(`{"numeric":[{"name":"a"},{"name":"a"}]}`))
	assert.Error(t, err)
	_, err = LoadPreprocessor(strings.NewReader(`{}`))
	assert.Error(t, err)
}

func TestVariantPredict(t *testing.T) {
	v := testVariant(t)

	got, err := v.Predict([]features.Vector{
		row(30, 9.12, "invasive"),        // 0.6 + -0.2
		row(20, 7.5, "invasive"),         // -0.4 + 0.2
		row(math.NaN(), 9.12, "native"), // missing temp goes left: -0.4 + -0.2
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, sigmoidOf(0.4), got[0], 1e-12)
	assert.InDelta(t, sigmoidOf(-0.2), got[1], 1e-12)
	assert.InDelta(t, sigmoidOf(-0.6), got[2], 1e-12)
}

func TestVariantPredictMismatch(t *testing.T) {
	v := testVariant(t)
	_, err := v.Predict([]features.Vector{{Numeric: map[string]float64{}}})
	assert.ErrorIs(t, err, ErrPreprocessorMismatch)
}

func TestNewVariantWidthMismatch(t *testing.T) {
	pre := &Preprocessor{Numeric: []NumericColumn{{Name: "a", Scale: 1}}}
	b, err := LoadBooster(strings.NewReader(testModel))
	require.NoError(t, err)
	_, err = NewVariant("x", pre, b)
	assert.ErrorIs(t, err, ErrPreprocessorMismatch)
}

func TestGlobalImportance(t *testing.T) {
	v := testVariant(t)
	imp, err := v.FeatureImportance(ImportanceGlobal, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"num__input_temp":      4,
		"cat__status_invasive": 2,
		"num__wb_ph_min":       1,
	}, imp)
}

func TestLocalImportance(t *testing.T) {
	v := testVariant(t)
	imp, err := v.FeatureImportance(ImportanceLocal, []features.Vector{row(30, 9.12, "invasive")})
	require.NoError(t, err)

	assert.InDelta(t, 0.30, imp["num__input_temp"], 1e-12)
	assert.InDelta(t, 0.25, imp["cat__status_invasive"], 1e-12)
	assert.InDelta(t, 0.20, imp["num__wb_ph_min"], 1e-12)
	assert.InDelta(t, 0.0, imp["cat__status_native"], 1e-12)

	_, err = v.FeatureImportance(ImportanceLocal, nil)
	assert.Error(t, err)
	_, err = v.FeatureImportance("shapley", nil)
	assert.Error(t, err)
}

func TestContributionsSumToMargin(t *testing.T) {
	b, err := LoadBooster(strings.NewReader(testModel))
	require.NoError(t, err)

	for _, x := range [][]float64{{1, 1.12, 1, 0}, {-1, -0.5, 1, 0}, {math.NaN(), 0, 0, 1}} {
		c := b.Contributions(x, 4)
		var sum float64
		for _, v := range c {
			sum += v
		}
		assert.InDelta(t, b.Margin(x), sum, 1e-12)
	}
}

func TestLoadBoosterErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"objective", `{"learner":{"objective":{"name":"multi:softprob"}}}`},
		{"no trees", `{"learner":{"objective":{"name":"binary:logistic"},"learner_model_param":{"base_score":"0.5"}}}`},
		{"bad base", `{"learner":{"objective":{"name":"binary:logistic"},"learner_model_param":{"base_score":"1.5"}}}`},
		{"cycle", `{"learner":{"objective":{"name":"binary:logistic"},"gradient_booster":{"model":{"trees":[
			{"left_children":[0],"right_children":[0],"split_indices":[0],"split_conditions":[0]}]}}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadBooster(strings.NewReader(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseBaseScore(t *testing.T) {
	for in, want := range map[string]float64{"5E-1": 0.5, "[2.5E-1]": 0.25, "": 0.5} {
		got, err := parseBaseScore(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry("")
	reg.Register(testVariant(t))
	reg.MarkFailed("alternative", errors.New("corrupt artifact"))

	a, err := reg.Get("")
	require.NoError(t, err)
	assert.Equal(t, "primary", a.Name())

	_, err = reg.Get("alternative")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Contains(t, err.Error(), "corrupt artifact")

	_, err = reg.Get("nope")
	assert.ErrorIs(t, err, ErrModelUnavailable)

	assert.Equal(t, []VariantStatus{
		{Name: "alternative", Error: "corrupt artifact"},
		{Name: "primary", Available: true, Default: true},
	}, reg.Status())
}

type mapSource map[string]string

func (m mapSource) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("artifact %q not found", key)
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

func TestLoadRegistry(t *testing.T) {
	src := mapSource{
		"model.json": testModel,
		"pre.json":   testPreprocessor,
		"bad.json":   `{"learner":`,
	}
	reg := LoadRegistry(context.Background(), src, "primary", []VariantSpec{
		{Name: "primary", Model: "model.json", Preprocessor: "pre.json"},
		{Name: "baseline", Model: "bad.json", Preprocessor: "pre.json"},
		{Name: "alternative", Model: "missing.json", Preprocessor: "pre.json"},
	}, nil)

	_, err := reg.Get("primary")
	assert.NoError(t, err)
	_, err = reg.Get("baseline")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	_, err = reg.Get("alternative")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
