// Package presence answers whether a species has a recorded occurrence at
// a monitored lake.
package presence

import (
	"strings"

	"github.com/lakerisk/lakerisk/pkg/reference"
)

// Presence is the answer reported per lake.
type Presence string

const (
	Yes Presence = "Yes"
	No  Presence = "No"
)

// Record is one observed occurrence: a species at a free-text locality.
type Record struct {
	Species  string `json:"species" db:"species"`
	Locality string `json:"locality" db:"locality"`
}

// Checker is satisfied by Index and by anything else that can answer the
// presence question.
type Checker interface {
	Present(species, lake string) Presence
}

// Index groups occurrence localities by species. It is immutable once built.
type Index struct {
	bySpecies map[string][]locality
}

type locality struct {
	lower     string // lowercased raw text
	canonical string // canonical lake name, or empty when unmapped
}

// NewIndex builds an Index. Records with an empty species or locality are
// ignored.
func NewIndex(records []Record) *Index {
	idx := &Index{bySpecies: make(map[string][]locality)}
	for _, r := range records {
		loc := strings.TrimSpace(r.Locality)
		if r.Species == "" || loc == "" {
			continue
		}
		canonical, _ := reference.NormalizeLakeName(loc)
		idx.bySpecies[r.Species] = append(idx.bySpecies[r.Species], locality{
			lower:     strings.ToLower(loc),
			canonical: canonical,
		})
	}
	return idx
}

// Len reports the number of indexed occurrences.
func (idx *Index) Len() int {
	n := 0
	for _, locs := range idx.bySpecies {
		n += len(locs)
	}
	return n
}

// Present reports Yes when any occurrence of species names lake, either as
// a case-insensitive substring of the locality (underscores read as
// spaces) or through the lake-name variant table. Otherwise No.
func (idx *Index) Present(species, lake string) Presence {
	locs := idx.bySpecies[species]
	if len(locs) == 0 {
		return No
	}
	name := strings.TrimSpace(strings.ReplaceAll(lake, "_", " "))
	if name == "" {
		return No
	}
	needle := strings.ToLower(name)
	canonical, ok := reference.NormalizeLakeName(name)
	if !ok {
		canonical = name
	}
	for _, l := range locs {
		if strings.Contains(l.lower, needle) || (l.canonical != "" && l.canonical == canonical) {
			return Yes
		}
	}
	return No
}
