// Package reference holds the static tables the risk pipeline scores
// against: species traits and monitored lake baselines.
// Tables are immutable once a Store is built.
package reference

import (
	"errors"

	"github.com/lakerisk/lakerisk/pkg/water"
)

// ErrSpeciesNotFound is returned when a species key has no record.
var ErrSpeciesNotFound = errors.New("species not found")

// SpeciesRecord is one species with the traits the classifier consumes.
type SpeciesRecord struct {
	Name        string `json:"species"` // scientific name, unique key
	CommonName  string `json:"common_name,omitempty"`
	Kingdom     string `json:"kingdom,omitempty"`
	Phylum      string `json:"phylum,omitempty"`
	Class       string `json:"class,omitempty"`
	Order       string `json:"order,omitempty"`
	Family      string `json:"family,omitempty"`
	Genus       string `json:"genus,omitempty"`
	Status      string `json:"status,omitempty"`
	FeedingType string `json:"feeding_type,omitempty"`

	TempPrefMin float64 `json:"temp_pref_min"`
	TempPrefMax float64 `json:"temp_pref_max"`

	// Traits holds the remaining numeric columns (trophic_lvl,
	// fecundity_mean, length_max, ...) keyed by column name.
	Traits     map[string]float64 `json:"traits,omitempty"`
	// Attributes holds the remaining categorical columns.
	Attributes map[string]string  `json:"attributes,omitempty"`
}

// LakeBaseline is one monitored lake and its reference water quality.
type LakeBaseline struct {
	Name      string        `json:"name" yaml:"name"`
	Region    string        `json:"region" yaml:"region"`
	Latitude  float64       `json:"latitude" yaml:"latitude"`
	Longitude float64       `json:"longitude" yaml:"longitude"`
	Baseline  water.Reading `json:"environmental_parameters" yaml:"baseline"`
}
