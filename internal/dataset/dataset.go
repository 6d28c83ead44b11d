// Package dataset loads the reference tables: the species/occurrence CSV and
// an optional lakes YAML that replaces the built-in lake table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lakerisk/lakerisk/pkg/presence"
	"github.com/lakerisk/lakerisk/pkg/reference"
)

// Dataset is the parsed species CSV.
type Dataset struct {
	// Species holds the first row seen for each species, in file order.
	Species []reference.SpeciesRecord
	// Occurrences holds one record per row with a waterbody_name.
	Occurrences []presence.Record
	// RecordCounts is the number of rows per species.
	RecordCounts map[string]int
}

// columns that never become species traits
var skipColumn = map[string]bool{
	"species":        true,
	"waterbody_name": true,
}

// ParseSpeciesCSV reads a CSV with a header row. The "species" column is
// required. Columns that parse as numbers in every non-empty cell become
// numeric traits; all others are categorical. Waterbody columns
// (waterbody_name, wb_*, input_*) describe the row's locality and are not
// copied onto the species.
func ParseSpeciesCSV(r io.Reader) (*Dataset, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading species csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("species csv is empty")
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	speciesCol, ok := col["species"]
	if !ok {
		return nil, errors.New("species csv has no species column")
	}
	wbCol, hasWB := col["waterbody_name"]

	data := rows[1:]
	numeric := numericColumns(header, data)

	ds := &Dataset{RecordCounts: make(map[string]int)}
	for line, row := range data {
		name := strings.TrimSpace(cell(row, speciesCol))
		if name == "" {
			continue
		}
		ds.RecordCounts[name]++

		if hasWB {
			if wb := strings.TrimSpace(cell(row, wbCol)); wb != "" {
				ds.Occurrences = append(ds.Occurrences, presence.Record{Species: name, Locality: wb})
			}
		}
		if ds.RecordCounts[name] > 1 {
			continue
		}

		rec, err := speciesRecord(name, header, row, numeric)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		ds.Species = append(ds.Species, rec)
	}
	return ds, nil
}

func speciesRecord(name string, header, row []string, numeric []bool) (reference.SpeciesRecord, error) {
	rec := reference.SpeciesRecord{
		Name:        name,
		TempPrefMin: math.NaN(),
		TempPrefMax: math.NaN(),
		Traits:      make(map[string]float64),
		Attributes:  make(map[string]string),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if skipColumn[h] || strings.HasPrefix(h, "wb_") || strings.HasPrefix(h, "input_") {
			continue
		}
		raw := strings.TrimSpace(cell(row, i))

		if numeric[i] {
			v := math.NaN()
			if raw != "" {
				f, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return rec, fmt.Errorf("column %s: %w", h, err)
				}
				v = f
			}
			switch h {
			case "temp_pref_min":
				rec.TempPrefMin = v
			case "temp_pref_max":
				rec.TempPrefMax = v
			default:
				rec.Traits[h] = v
			}
			continue
		}

		switch h {
		case "common_name":
			rec.CommonName = raw
		case "kingdom":
			rec.Kingdom = raw
		case "phylum":
			rec.Phylum = raw
		case "class":
			rec.Class = raw
		case "order":
			rec.Order = raw
		case "family":
			rec.Family = raw
		case "genus":
			rec.Genus = raw
		case "status":
			rec.Status = raw
		case "feeding_type":
			rec.FeedingType = raw
		default:
			rec.Attributes[h] = raw
		}
	}
	return rec, nil
}

// numericColumns reports, per column, whether every non-empty cell parses
// as a float and at least one cell is non-empty.
func numericColumns(header []string, rows [][]string) []bool {
	out := make([]bool, len(header))
	for i := range header {
		seen := false
		ok := true
		for _, row := range rows {
			raw := strings.TrimSpace(cell(row, i))
			if raw == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				ok = false
				break
			}
		}
		out[i] = seen && ok
	}
	return out
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// lakesFile is the YAML layout of a lake table.
type lakesFile struct {
	Lakes []reference.LakeBaseline `yaml:"lakes"`
}

// ParseLakesYAML reads a lake table. Every baseline must be within the
// accepted reading ranges.
func ParseLakesYAML(r io.Reader) ([]reference.LakeBaseline, error) {
	var f lakesFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing lakes yaml: %w", err)
	}
	if len(f.Lakes) == 0 {
		return nil, errors.New("lakes yaml lists no lakes")
	}
	for _, l := range f.Lakes {
		if err := l.Baseline.Validate(); err != nil {
			return nil, fmt.Errorf("lake %q: %w", l.Name, err)
		}
	}
	return f.Lakes, nil
}
