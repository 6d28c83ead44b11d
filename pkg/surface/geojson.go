package surface

import (
	"io"

	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/scoring"
)

// FeatureCollection is a GeoJSON document of lake points.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Warning  string    `json:"warning,omitempty"`
}

// Feature is one lake point with its risk properties.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Point          `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Point is a GeoJSON point; coordinates are longitude, latitude.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// ToGeoJSON converts a risk result into a map-ready feature collection.
func ToGeoJSON(result *scoring.Result) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(result.Predictions)),
		Warning:  result.Warning,
	}
	for _, p := range result.Predictions {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Point{Type: "Point", Coordinates: [2]float64{p.Longitude, p.Latitude}},
			Properties: map[string]any{
				"name":          p.LakeName,
				"region":        p.Region,
				"prob":          p.AdjustedScore,
				"percentage":    p.AdjustedScore * 100,
				"risk_category": p.RiskLevel,
				"raw_score":     p.RawScore,
				"similarity":    p.Similarity,
				"presence":      p.Presence,
				"species":       result.Species,
			},
		})
	}
	return fc
}

// GeoJSONRenderer writes risk results as a GeoJSON FeatureCollection.
type GeoJSONRenderer struct{}

func (r *GeoJSONRenderer) Render(w io.Writer, result *scoring.Result) error {
	return writeIndented(w, ToGeoJSON(result))
}

func (r *GeoJSONRenderer) RenderImportance(io.Writer, *importance.Result) error {
	return ErrUnsupported
}

func (r *GeoJSONRenderer) RenderSweep(io.Writer, []scoring.SweepRow) error {
	return ErrUnsupported
}
