package scoring_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lakerisk/lakerisk/pkg/features"
	"github.com/lakerisk/lakerisk/pkg/model"
	"github.com/lakerisk/lakerisk/pkg/presence"
	"github.com/lakerisk/lakerisk/pkg/reference"
	"github.com/lakerisk/lakerisk/pkg/scoring"
	"github.com/lakerisk/lakerisk/pkg/water"
)

// fakeAdapter returns a fixed probability per waterbody.
type fakeAdapter struct {
	byLake   map[string]float64
	fallback float64
	calls    int
	err      error
	short    bool
	panics   bool
}

func (f *fakeAdapter) Name() string { return "primary" }

func (f *fakeAdapter) Predict(rows []features.Vector) ([]float64, error) {
	f.calls++
	if f.panics {
		panic("index out of range")
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		p, ok := f.byLake[r.Waterbody()]
		if !ok {
			p = f.fallback
		}
		out[i] = p
	}
	if f.short {
		out = out[1:]
	}
	return out, nil
}

func (f *fakeAdapter) FeatureImportance(model.ImportanceKind, []features.Vector) (map[string]float64, error) {
	return nil, nil
}

// taalReading sits exactly on the Lake Taal baseline.
var taalReading = water.Reading{PH: 8.32, Salinity: 0.85, DissolvedOxygen: 5.61, BOD: 3.82, Turbidity: 28.0, Temperature: 25.5}

func newEngine(t *testing.T, a *fakeAdapter, pc presence.Checker) *scoring.Engine {
	t.Helper()
	store, err := reference.NewStore([]reference.SpeciesRecord{
		{Name: "Oreochromis niloticus", TempPrefMin: 14, TempPrefMax: 33},
		{Name: "Anabas testudineus", TempPrefMin: 22, TempPrefMax: 30},
	}, reference.LuzonLakes())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	reg := model.NewRegistry("")
	reg.Register(a)
	return scoring.NewEngine(store, reg, pc)
}

func TestCategorizeBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  scoring.RiskLevel
	}{
		{0, scoring.RiskLow},
		{0.32, scoring.RiskLow},
		{0.33, scoring.RiskMedium},
		{0.65, scoring.RiskMedium},
		{0.66, scoring.RiskHigh},
		{1, scoring.RiskHigh},
	}
	for _, tt := range tests {
		if got := scoring.Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScoreRanksEveryLakeOnce(t *testing.T) {
	a := &fakeAdapter{fallback: 0.5, byLake: map[string]float64{"Lake Buhi": 0.9}}
	e := newEngine(t, a, nil)

	res, err := e.Score(context.Background(), scoring.Request{Species: "Oreochromis niloticus", Reading: taalReading})
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if a.calls != 1 {
		t.Errorf("expected one batched Predict call, got %d", a.calls)
	}
	if res.Variant != "primary" {
		t.Errorf("expected default variant, got %q", res.Variant)
	}

	lakes := reference.LuzonLakes()
	if len(res.Predictions) != len(lakes) {
		t.Fatalf("expected %d predictions, got %d", len(lakes), len(res.Predictions))
	}
	seen := make(map[string]bool)
	for i, p := range res.Predictions {
		if seen[p.LakeName] {
			t.Errorf("lake %s appears twice", p.LakeName)
		}
		seen[p.LakeName] = true

		if p.AdjustedScore > p.RawScore {
			t.Errorf("%s: adjusted %f > raw %f", p.LakeName, p.AdjustedScore, p.RawScore)
		}
		if p.AdjustedScore != p.RawScore*p.Similarity {
			t.Errorf("%s: adjusted %f != raw*similarity", p.LakeName, p.AdjustedScore)
		}
		if p.RiskLevel != scoring.Categorize(p.AdjustedScore) {
			t.Errorf("%s: risk level %s does not match score %f", p.LakeName, p.RiskLevel, p.AdjustedScore)
		}
		if i > 0 && res.Predictions[i-1].AdjustedScore < p.AdjustedScore {
			t.Errorf("predictions not sorted at %d", i)
		}
	}

	top, _ := res.Top()
	if top.LakeName != "Lake Taal" {
		t.Errorf("expected Lake Taal first, got %s", top.LakeName)
	}
	if top.Similarity != 1 {
		t.Errorf("expected similarity 1 on the baseline itself, got %f", top.Similarity)
	}
	if top.RiskLevel != scoring.RiskMedium {
		t.Errorf("expected Medium for 0.5, got %s", top.RiskLevel)
	}
	if res.Warning != "" {
		t.Errorf("unexpected warning %q", res.Warning)
	}
}

func TestScoreTiesBreakByLakeName(t *testing.T) {
	e := newEngine(t, &fakeAdapter{}, nil)

	res, err := e.Score(context.Background(), scoring.Request{Species: "Oreochromis niloticus", Reading: taalReading})
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	for i := 1; i < len(res.Predictions); i++ {
		if res.Predictions[i-1].LakeName > res.Predictions[i].LakeName {
			t.Errorf("zero scores should be ordered by name: %s before %s",
				res.Predictions[i-1].LakeName, res.Predictions[i].LakeName)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	e := newEngine(t, &fakeAdapter{fallback: 0.7}, nil)
	req := scoring.Request{Species: "Anabas testudineus", Reading: water.Reading{PH: 7.5, Salinity: 0.5, DissolvedOxygen: 6, BOD: 2, Turbidity: 5, Temperature: 27}}

	first, err := e.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	second, err := e.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical requests produced different results")
	}
}

func TestScoreWarning(t *testing.T) {
	e := newEngine(t, &fakeAdapter{fallback: 0.9}, nil)
	far := water.Reading{PH: 14, Salinity: 10, DissolvedOxygen: 0, BOD: 20, Turbidity: 500, Temperature: 40}

	res, err := e.Score(context.Background(), scoring.Request{Species: "Oreochromis niloticus", Reading: far})
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if res.Warning != scoring.LowSimilarityWarning {
		t.Errorf("expected low-similarity warning, got %q", res.Warning)
	}
	for _, p := range res.Predictions {
		if p.RiskLevel != scoring.RiskLow {
			t.Errorf("%s: expected Low for a distant reading, got %s", p.LakeName, p.RiskLevel)
		}
	}
}

func TestScorePresence(t *testing.T) {
	idx := presence.NewIndex([]presence.Record{
		{Species: "Oreochromis niloticus", Locality: "Laguna Lake, Philippines"},
	})
	e := newEngine(t, &fakeAdapter{fallback: 0.5}, idx)

	res, err := e.Score(context.Background(), scoring.Request{Species: "Oreochromis niloticus", Reading: taalReading})
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	for _, p := range res.Predictions {
		want := presence.No
		if p.LakeName == "Laguna de Bay" {
			want = presence.Yes
		}
		if p.Presence != want {
			t.Errorf("%s: presence %s, want %s", p.LakeName, p.Presence, want)
		}
	}
}

func TestScoreSpeciesNotFound(t *testing.T) {
	a := &fakeAdapter{fallback: 0.5}
	e := newEngine(t, a, nil)

	res, err := e.Score(context.Background(), scoring.Request{Species: "nonexistent species X", Reading: taalReading})
	if err == nil {
		t.Fatal("expected an error")
	}
	if res != nil {
		t.Error("expected no partial result")
	}
	if !errors.Is(err, reference.ErrSpeciesNotFound) {
		t.Errorf("expected ErrSpeciesNotFound, got %v", err)
	}
	if scoring.KindOf(err) != scoring.KindSpeciesNotFound {
		t.Errorf("expected kind SpeciesNotFound, got %q", scoring.KindOf(err))
	}
	if a.calls != 0 {
		t.Errorf("model should not run for an unknown species, ran %d times", a.calls)
	}
}

func TestScoreModelUnavailable(t *testing.T) {
	e := newEngine(t, &fakeAdapter{}, nil)

	_, err := e.Score(context.Background(), scoring.Request{Species: "Oreochromis niloticus", Reading: taalReading, Variant: "alternative"})
	if !errors.Is(err, model.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	var se *scoring.Error
	if !errors.As(err, &se) || se.Kind != scoring.KindModelUnavailable {
		t.Errorf("expected *scoring.Error with ModelUnavailable kind, got %#v", err)
	}
}

func TestScoreComputationFailure(t *testing.T) {
	tests := []struct {
		name    string
		adapter *fakeAdapter
	}{
		{"predict error", &fakeAdapter{err: model.ErrPreprocessorMismatch}},
		{"count mismatch", &fakeAdapter{fallback: 0.5, short: true}},
		{"panic", &fakeAdapter{panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.adapter, nil)
			res, err := e.Score(context.Background(), scoring.Request{Species: "Oreochromis niloticus", Reading: taalReading})
			if res != nil {
				t.Error("expected no partial result")
			}
			if !errors.Is(err, scoring.ErrComputationFailure) {
				t.Errorf("expected ErrComputationFailure, got %v", err)
			}
			if scoring.KindOf(err) != scoring.KindComputationFailure {
				t.Errorf("expected kind ComputationFailure, got %q", scoring.KindOf(err))
			}
		})
	}
}

func TestScoreCustomThresholds(t *testing.T) {
	store, err := reference.NewStore([]reference.SpeciesRecord{{Name: "Oreochromis niloticus"}}, reference.LuzonLakes())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	reg := model.NewRegistry("")
	reg.Register(&fakeAdapter{fallback: 0.5})

	th := scoring.Defaults()
	th.MediumBelow = 0.4
	e := scoring.NewEngine(store, reg, nil, scoring.WithThresholds(th))

	res, err := e.Score(context.Background(), scoring.Request{Species: "Oreochromis niloticus", Reading: taalReading})
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if top, _ := res.Top(); top.RiskLevel != scoring.RiskHigh {
		t.Errorf("expected High under a 0.4 medium cut-off, got %s", top.RiskLevel)
	}
}
