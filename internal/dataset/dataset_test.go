package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakerisk/lakerisk/pkg/presence"
)

const speciesCSV = `species,common_name,family,status,temp_pref_min,temp_pref_max,trophic_lvl,fecundity_class,waterbody_name,wb_ph_min
Oreochromis niloticus,Nile tilapia,Cichlidae,invasive,14,33,2.0,high,Laguna de Bay,9.1
Oreochromis niloticus,Nile tilapia,Cichlidae,invasive,14,33,2.0,high,Taal Lake,8.3
Anabas testudineus,Climbing perch,Anabantidae,native,22,30,,low,,
,orphan row,,,,,,,Lake Buhi,
`

func TestParseSpeciesCSV(t *testing.T) {
	ds, err := ParseSpeciesCSV(strings.NewReader(speciesCSV))
	require.NoError(t, err)

	require.Len(t, ds.Species, 2)
	tilapia := ds.Species[0]
	assert.Equal(t, "Oreochromis niloticus", tilapia.Name)
	assert.Equal(t, "Nile tilapia", tilapia.CommonName)
	assert.Equal(t, "Cichlidae", tilapia.Family)
	assert.Equal(t, "invasive", tilapia.Status)
	assert.Equal(t, 14.0, tilapia.TempPrefMin)
	assert.Equal(t, 33.0, tilapia.TempPrefMax)
	assert.Equal(t, 2.0, tilapia.Traits["trophic_lvl"])
	assert.Equal(t, "high", tilapia.Attributes["fecundity_class"])
	assert.NotContains(t, tilapia.Traits, "wb_ph_min")
	assert.NotContains(t, tilapia.Attributes, "waterbody_name")

	perch := ds.Species[1]
	assert.True(t, math.IsNaN(perch.Traits["trophic_lvl"]), "empty numeric cell is missing")

	assert.Equal(t, map[string]int{"Oreochromis niloticus": 2, "Anabas testudineus": 1}, ds.RecordCounts)
	assert.Equal(t, []presence.Record{
		{Species: "Oreochromis niloticus", Locality: "Laguna de Bay"},
		{Species: "Oreochromis niloticus", Locality: "Taal Lake"},
	}, ds.Occurrences)
}

func TestParseSpeciesCSVErrors(t *testing.T) {
	_, err := ParseSpeciesCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseSpeciesCSV(strings.NewReader("name,family\nx,y\n"))
	assert.ErrorContains(t, err, "no species column")

	_, err = ParseSpeciesCSV(strings.NewReader("species,a\n\"unterminated,1\n"))
	assert.Error(t, err)
}

const lakesYAML = `
lakes:
  - name: Lake Lanao
    region: BARMM
    latitude: 7.88
    longitude: 124.25
    baseline:
      ph: 7.6
      salinity: 0.1
      dissolved_oxygen: 7.2
      bod: 1.5
      turbidity: 4
      temperature: 25
`

func TestParseLakesYAML(t *testing.T) {
	lakes, err := ParseLakesYAML(strings.NewReader(lakesYAML))
	require.NoError(t, err)
	require.Len(t, lakes, 1)
	assert.Equal(t, "Lake Lanao", lakes[0].Name)
	assert.Equal(t, 7.2, lakes[0].Baseline.DissolvedOxygen)

	_, err = ParseLakesYAML(strings.NewReader("lakes: []\n"))
	assert.Error(t, err)

	bad := strings.Replace(lakesYAML, "ph: 7.6", "ph: 17", 1)
	_, err = ParseLakesYAML(strings.NewReader(bad))
	assert.ErrorContains(t, err, "Lake Lanao")
}
