package reference

import (
	"fmt"
	"sort"
	"strings"
)

// Store is the read-only reference data the pipeline scores against.
// It is safe for concurrent use; nothing mutates it after NewStore.
type Store struct {
	species     map[string]SpeciesRecord
	speciesList []string
	lakes       []LakeBaseline
	lakeIndex   map[string]int
}

// NewStore builds a Store. When a species appears more than once the first
// record wins. Lake names must be unique and at least one lake is required.
func NewStore(species []SpeciesRecord, lakes []LakeBaseline) (*Store, error) {
	if len(lakes) == 0 {
		return nil, fmt.Errorf("reference store needs at least one lake")
	}

	s := &Store{
		species:   make(map[string]SpeciesRecord, len(species)),
		lakes:     make([]LakeBaseline, len(lakes)),
		lakeIndex: make(map[string]int, len(lakes)),
	}
	copy(s.lakes, lakes)

	for i, lake := range s.lakes {
		if lake.Name == "" {
			return nil, fmt.Errorf("lake %d has no name", i)
		}
		if _, dup := s.lakeIndex[lake.Name]; dup {
			return nil, fmt.Errorf("duplicate lake %q", lake.Name)
		}
		s.lakeIndex[lake.Name] = i
	}

	for _, sp := range species {
		if sp.Name == "" {
			continue
		}
		if _, seen := s.species[sp.Name]; seen {
			continue
		}
		s.species[sp.Name] = sp
		s.speciesList = append(s.speciesList, sp.Name)
	}
	sort.Strings(s.speciesList)

	return s, nil
}

// Species returns the record for an exact scientific name.
func (s *Store) Species(name string) (SpeciesRecord, error) {
	sp, ok := s.species[name]
	if !ok {
		return SpeciesRecord{}, fmt.Errorf("%w: %q", ErrSpeciesNotFound, name)
	}
	return sp, nil
}

// SpeciesNames returns every species key in ascending order.
func (s *Store) SpeciesNames() []string {
	out := make([]string, len(s.speciesList))
	copy(out, s.speciesList)
	return out
}

// Lakes returns the lake table in its configured order.
func (s *Store) Lakes() []LakeBaseline {
	out := make([]LakeBaseline, len(s.lakes))
	copy(out, s.lakes)
	return out
}

// Lake looks a lake up by canonical name, by name with underscores for
// spaces, or by a known name variant. Unknown names report false.
func (s *Store) Lake(name string) (LakeBaseline, bool) {
	if i, ok := s.lakeIndex[name]; ok {
		return s.lakes[i], true
	}
	if i, ok := s.lakeIndex[strings.ReplaceAll(name, "_", " ")]; ok {
		return s.lakes[i], true
	}
	if canonical, ok := NormalizeLakeName(name); ok {
		if i, ok := s.lakeIndex[canonical]; ok {
			return s.lakes[i], true
		}
	}
	return LakeBaseline{}, false
}
