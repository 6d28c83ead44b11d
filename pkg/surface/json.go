package surface

import (
	"encoding/json"
	"io"

	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/scoring"
)

// JSONRenderer marshals results to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, result *scoring.Result) error {
	return writeIndented(w, result)
}

func (r *JSONRenderer) RenderImportance(w io.Writer, result *importance.Result) error {
	return writeIndented(w, result)
}

func (r *JSONRenderer) RenderSweep(w io.Writer, rows []scoring.SweepRow) error {
	if rows == nil {
		rows = []scoring.SweepRow{}
	}
	return writeIndented(w, rows)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
