package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/lakerisk/lakerisk/pkg/features"
)

// ErrPreprocessorMismatch is returned when a feature row lacks a column the
// preprocessor was fitted on.
var ErrPreprocessorMismatch = errors.New("preprocessor mismatch")

// Preprocessor reproduces a fitted column transformer: standard scaling for
// numeric columns followed by one-hot encoding for categorical columns.
// Output columns are numeric first, then categorical, in declared order.
type Preprocessor struct {
	Numeric     []NumericColumn     `json:"numeric"`
	Categorical []CategoricalColumn `json:"categorical"`
}

// NumericColumn is a standardized input column.
type NumericColumn struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// CategoricalColumn is a one-hot encoded input column. Values outside
// Categories encode as all zeros.
type CategoricalColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// LoadPreprocessor decodes and validates a preprocessor document.
func LoadPreprocessor(r io.Reader) (*Preprocessor, error) {
	var p Preprocessor
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding preprocessor: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the preprocessor for empty or duplicate columns.
func (p *Preprocessor) Validate() error {
	if len(p.Numeric)+len(p.Categorical) == 0 {
		return fmt.Errorf("preprocessor has no columns")
	}
	seen := make(map[string]bool)
	for _, c := range p.Numeric {
		if c.Name == "" || seen[c.Name] {
			return fmt.Errorf("invalid or duplicate numeric column %q", c.Name)
		}
		seen[c.Name] = true
	}
	for _, c := range p.Categorical {
		if c.Name == "" || seen[c.Name] {
			return fmt.Errorf("invalid or duplicate categorical column %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Width is the number of output columns.
func (p *Preprocessor) Width() int {
	n := len(p.Numeric)
	for _, c := range p.Categorical {
		n += len(c.Categories)
	}
	return n
}

// OutputNames returns the transformed column names, e.g. "num__wb_ph_min"
// and "cat__status_invasive".
func (p *Preprocessor) OutputNames() []string {
	names := make([]string, 0, p.Width())
	for _, c := range p.Numeric {
		names = append(names, "num__"+c.Name)
	}
	for _, c := range p.Categorical {
		for _, cat := range c.Categories {
			names = append(names, "cat__"+c.Name+"_"+cat)
		}
	}
	return names
}

// Transform encodes one row. NaN numeric inputs stay NaN so the booster can
// route them as missing values.
func (p *Preprocessor) Transform(v features.Vector) ([]float64, error) {
	out := make([]float64, 0, p.Width())
	for _, c := range p.Numeric {
		x, ok := v.Numeric[c.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing numeric column %q", ErrPreprocessorMismatch, c.Name)
		}
		scale := c.Scale
		if scale == 0 || math.IsNaN(scale) {
			scale = 1
		}
		out = append(out, (x-c.Mean)/scale)
	}
	for _, c := range p.Categorical {
		s, ok := v.Categorical[c.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing categorical column %q", ErrPreprocessorMismatch, c.Name)
		}
		for _, cat := range c.Categories {
			if s == cat {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out, nil
}

// TransformBatch encodes rows in order and stops at the first failure.
func (p *Preprocessor) TransformBatch(rows []features.Vector) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, v := range rows {
		x, err := p.Transform(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}
