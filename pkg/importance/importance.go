// Package importance buckets per-feature model importance into the six
// water-quality parameters a caller can actually change.
package importance

import (
	"sort"
	"strings"
)

// MaxDetailed caps the per-feature breakdown in a Result.
const MaxDetailed = 50

// Unmatched is the bucket name for features no group claims.
const Unmatched = "Other"

// Group maps one parameter onto feature-name keywords.
type Group struct {
	Parameter string
	Keywords  []string
}

// DefaultGroups returns the parameter groups in precedence order. A feature
// belongs to the first group with a keyword that occurs in its name.
func DefaultGroups() []Group {
	return []Group{
		{Parameter: "pH", Keywords: []string{"ph", "_ph_", "ph_"}},
		{Parameter: "Salinity", Keywords: []string{"salinity", "sal_", "_sal"}},
		{Parameter: "Dissolved Oxygen", Keywords: []string{"_do_", "_do", "oxygen", "dissolved"}},
		{Parameter: "BOD", Keywords: []string{"bod", "_bod_", "bod_"}},
		{Parameter: "Turbidity", Keywords: []string{"turbidity", "turb_", "_turb"}},
		{Parameter: "Temperature", Keywords: []string{"temp", "_temp_", "temp_"}},
	}
}

// Entry is the aggregated importance of one parameter.
type Entry struct {
	Parameter    string   `json:"parameter"`
	Importance   float64  `json:"total_importance"`
	FeatureCount int      `json:"feature_count"`
	Percentage   float64  `json:"percentage"`
	Features     []string `json:"features"`
}

// FeatureScore is one raw feature in the detailed breakdown.
type FeatureScore struct {
	Feature    string  `json:"feature"`
	Parameter  string  `json:"parameter"`
	Importance float64 `json:"importance"`
	Percentage float64 `json:"percentage"`
}

// Result is the outcome of an importance analysis.
type Result struct {
	Variant     string         `json:"variant,omitempty"`
	Kind        string         `json:"kind,omitempty"`
	Approximate bool           `json:"approximate"`
	Total       float64        `json:"total_importance"`
	Parameters  []Entry        `json:"parameters"`
	Unmatched   Entry          `json:"unmatched"`
	Features    []FeatureScore `json:"features"`
}

// MostContributing returns the parameter with the largest share. It reports
// false when the model attributed nothing at all.
func (r *Result) MostContributing() (Entry, bool) {
	if r.Total <= 0 || len(r.Parameters) == 0 {
		return Entry{}, false
	}
	return r.Parameters[0], true
}

// Aggregate sums raw importances into groups. Every group appears in the
// result even when it matched nothing. Percentages are shares of the grand
// total including unmatched features, and are zero when the total is zero.
func Aggregate(raw map[string]float64, groups []Group) *Result {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	res := &Result{
		Parameters: make([]Entry, len(groups)),
		Unmatched:  Entry{Parameter: Unmatched, Features: []string{}},
	}
	for i, g := range groups {
		res.Parameters[i] = Entry{Parameter: g.Parameter, Features: []string{}}
	}

	for _, name := range names {
		v := raw[name]
		res.Total += v

		target := &res.Unmatched
		if i := match(name, groups); i >= 0 {
			target = &res.Parameters[i]
		}
		target.Importance += v
		target.FeatureCount++
		target.Features = append(target.Features, name)
		res.Features = append(res.Features, FeatureScore{Feature: name, Parameter: target.Parameter, Importance: v})
	}

	for i := range res.Parameters {
		res.Parameters[i].Percentage = share(res.Parameters[i].Importance, res.Total)
	}
	res.Unmatched.Percentage = share(res.Unmatched.Importance, res.Total)

	sort.SliceStable(res.Parameters, func(i, j int) bool {
		return res.Parameters[i].Importance > res.Parameters[j].Importance
	})

	sort.SliceStable(res.Features, func(i, j int) bool {
		return res.Features[i].Importance > res.Features[j].Importance
	})
	if len(res.Features) > MaxDetailed {
		res.Features = res.Features[:MaxDetailed]
	}
	for i := range res.Features {
		res.Features[i].Percentage = share(res.Features[i].Importance, res.Total)
	}
	if res.Features == nil {
		res.Features = []FeatureScore{}
	}
	return res
}

func match(feature string, groups []Group) int {
	lower := strings.ToLower(feature)
	for i, g := range groups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

func share(v, total float64) float64 {
	if total == 0 {
		return 0
	}
	return v / total * 100
}
