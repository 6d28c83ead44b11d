package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresent(t *testing.T) {
	idx := NewIndex([]Record{
		{Species: "Oreochromis niloticus", Locality: "Laguna de Bay, near Binangonan"},
		{Species: "Oreochromis niloticus", Locality: "Taal Lake"},
		{Species: "Clarias batrachus", Locality: "sampaloc lake"},
		{Species: "Pterygoplichthys disjunctivus", Locality: ""},
		{Species: "", Locality: "Lake Buhi"},
	})
	assert.Equal(t, 3, idx.Len())

	tests := []struct {
		name    string
		species string
		lake    string
		want    Presence
	}{
		{"substring", "Oreochromis niloticus", "Laguna de Bay", Yes},
		{"underscores", "Oreochromis niloticus", "Laguna_de_Bay", Yes},
		{"variant", "Oreochromis niloticus", "Lake Taal", Yes},
		{"case insensitive", "Clarias batrachus", "Sampaloc Lake", Yes},
		{"other lake", "Oreochromis niloticus", "Lake Buhi", No},
		{"unknown species", "Anabas testudineus", "Laguna de Bay", No},
		{"species is exact", "oreochromis niloticus", "Laguna de Bay", No},
		{"empty locality ignored", "Pterygoplichthys disjunctivus", "Lake Buhi", No},
		{"empty lake", "Oreochromis niloticus", "", No},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, idx.Present(tc.species, tc.lake))
		})
	}
}

func TestEmptyIndex(t *testing.T) {
	var c Checker = NewIndex(nil)
	assert.Equal(t, No, c.Present("Oreochromis niloticus", "Laguna de Bay"))
}
