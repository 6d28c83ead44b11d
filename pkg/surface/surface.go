// Package surface renders lakerisk results for people and programs.
// Implementations handle different output targets: terminal, JSON, GeoJSON.
package surface

import (
	"errors"
	"fmt"
	"io"

	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/scoring"
)

// ErrUnsupported is returned by a renderer that has no representation for a
// result type, such as GeoJSON for an importance breakdown.
var ErrUnsupported = errors.New("output format does not support this result")

// Renderer produces formatted output from engine results.
type Renderer interface {
	// Render writes a per-lake risk result.
	Render(w io.Writer, result *scoring.Result) error
	// RenderImportance writes a parameter importance breakdown.
	RenderImportance(w io.Writer, result *importance.Result) error
	// RenderSweep writes a cross-species risk table.
	RenderSweep(w io.Writer, rows []scoring.SweepRow) error
}

// New returns the renderer for an output format: text, json or geojson.
func New(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "geojson":
		return &GeoJSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or geojson)", format)
	}
}
