package surface_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/presence"
	"github.com/lakerisk/lakerisk/pkg/scoring"
	"github.com/lakerisk/lakerisk/pkg/surface"
	"github.com/lakerisk/lakerisk/pkg/water"
)

func sampleResult() *scoring.Result {
	return &scoring.Result{
		Species: "Oreochromis niloticus",
		Variant: "primary",
		Reading: water.Reading{PH: 8.32, Salinity: 0.85, DissolvedOxygen: 5.61, BOD: 3.82, Turbidity: 28, Temperature: 25.5},
		Predictions: []scoring.Prediction{
			{LakeName: "Lake Taal", Region: "IV-A", Latitude: 14.0, Longitude: 120.98, RawScore: 0.8, AdjustedScore: 0.8, RiskLevel: scoring.RiskHigh, Similarity: 1, Presence: presence.Yes},
			{LakeName: "Lake Buhi", Region: "V", Latitude: 13.43, Longitude: 123.52, RawScore: 0.4, AdjustedScore: 0.1, RiskLevel: scoring.RiskLow, Similarity: 0.25, Presence: presence.No},
		},
		Warning: scoring.LowSimilarityWarning,
	}
}

func sampleImportance() *importance.Result {
	return importance.Aggregate(map[string]float64{
		"num__input_temp":     6,
		"num__wb_ph_min":      3,
		"num__fecundity_mean": 1,
	}, importance.DefaultGroups())
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Invasion risk for Oreochromis niloticus",
		"model primary",
		"Lake Taal",
		"High",
		"Lake Buhi",
		"0.800",
		"Warning:",
		scoring.LowSimilarityWarning,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Index(output, "Lake Taal") > strings.Index(output, "Lake Buhi") {
		t.Error("expected predictions in ranked order")
	}
	if strings.Contains(output, "\033[") {
		t.Error("expected no ANSI codes when writing to a buffer")
	}
}

func TestTerminalRenderer_NoWarning(t *testing.T) {
	res := sampleResult()
	res.Warning = ""
	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).Render(&buf, res); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(buf.String(), "Warning") {
		t.Error("did not expect a warning line")
	}
}

func TestTerminalRenderer_Importance(t *testing.T) {
	r := &surface.TerminalRenderer{TopFeatures: 2}
	var buf bytes.Buffer

	if err := r.RenderImportance(&buf, sampleImportance()); err != nil {
		t.Fatalf("RenderImportance() error: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Most contributing: Temperature") {
		t.Errorf("expected Temperature as most contributing:\n%s", output)
	}
	if !strings.Contains(output, "60.0%") {
		t.Errorf("expected 60.0%% share for Temperature:\n%s", output)
	}
	if !strings.Contains(output, "Other") {
		t.Error("expected unmatched bucket")
	}
	if strings.Contains(output, "num__fecundity_mean") {
		t.Error("expected the feature list to be capped at two")
	}
}

func TestTerminalRenderer_ImportanceZero(t *testing.T) {
	var buf bytes.Buffer
	res := importance.Aggregate(nil, importance.DefaultGroups())
	if err := (&surface.TerminalRenderer{}).RenderImportance(&buf, res); err != nil {
		t.Fatalf("RenderImportance() error: %v", err)
	}
	if !strings.Contains(buf.String(), "no importance") {
		t.Errorf("expected zero-importance message:\n%s", buf.String())
	}
}

func TestTerminalRenderer_Sweep(t *testing.T) {
	var buf bytes.Buffer
	rows := []scoring.SweepRow{
		{Species: "Oreochromis niloticus", CommonName: "Nile tilapia", LakeName: "Lake Taal", AdjustedScore: 0.7, RiskLevel: scoring.RiskHigh},
		{Species: "Pterygoplichthys disjunctivus var. extremely long name", LakeName: "Lake Buhi", AdjustedScore: 0.1, RiskLevel: scoring.RiskLow},
	}
	if err := (&surface.TerminalRenderer{}).RenderSweep(&buf, rows); err != nil {
		t.Fatalf("RenderSweep() error: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Nile tilapia") || !strings.Contains(output, "…") {
		t.Errorf("unexpected sweep output:\n%s", output)
	}

	buf.Reset()
	_ = (&surface.TerminalRenderer{}).RenderSweep(&buf, nil)
	if !strings.Contains(buf.String(), "No species scored") {
		t.Error("expected empty-sweep message")
	}
}

func TestGeoJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := &surface.GeoJSONRenderer{}
	if err := r.Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var fc surface.FeatureCollection
	if err := json.Unmarshal(buf.Bytes(), &fc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %+v", fc)
	}
	f := fc.Features[0]
	if f.Geometry.Coordinates != [2]float64{120.98, 14.0} {
		t.Errorf("expected [lon, lat], got %v", f.Geometry.Coordinates)
	}
	if f.Properties["name"] != "Lake Taal" || f.Properties["risk_category"] != "High" {
		t.Errorf("unexpected properties %v", f.Properties)
	}
	if f.Properties["percentage"] != 80.0 {
		t.Errorf("expected percentage 80, got %v", f.Properties["percentage"])
	}
	if fc.Warning == "" {
		t.Error("expected warning to carry over")
	}

	if err := r.RenderImportance(&buf, sampleImportance()); !errors.Is(err, surface.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	preds, ok := decoded["predictions"].([]any)
	if !ok || len(preds) != 2 {
		t.Fatalf("expected two predictions, got %v", decoded["predictions"])
	}
	first := preds[0].(map[string]any)
	if first["lake_name"] != "Lake Taal" || first["presence"] != "Yes" {
		t.Errorf("unexpected first prediction %v", first)
	}
	if _, ok := decoded["input_parameters"]; !ok {
		t.Error("expected input_parameters")
	}

	buf.Reset()
	if err := (&surface.JSONRenderer{}).RenderSweep(&buf, nil); err != nil {
		t.Fatalf("RenderSweep() error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "text", "json", "geojson"} {
		if _, err := surface.New(format); err != nil {
			t.Errorf("New(%q) error: %v", format, err)
		}
	}
	if _, err := surface.New("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
