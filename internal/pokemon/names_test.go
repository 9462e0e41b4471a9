package pokemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Lugia", []string{"Lugia"}},
		{"Mega Latias and Mega Latios", []string{"Mega Latias", "Mega Latios"}},
		{"Tornadus, Thundurus, and Landorus", []string{"Tornadus", "Thundurus", "Landorus"}},
		{"Tornadus, Thundurus and Landorus", []string{"Tornadus", "Thundurus", "Landorus"}},
		{"Genesect (Burn Drive), Genesect (Chill Drive)", []string{"Genesect (Burn Drive)", "Genesect (Chill Drive)"}},
		{"Deoxys (Attack & Speed Forme)", []string{"Deoxys (Attack Forme)", "Deoxys (Speed Forme)"}},
		{"Deoxys (Attack & Defense Form)", []string{"Deoxys (Attack Forme)", "Deoxys (Defense Forme)"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitNames(tt.in), tt.in)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in   string
		want Parsed
	}{
		{"Mega Charizard X", Parsed{"Charizard", "-megax"}},
		{"Mega Mewtwo Y", Parsed{"Mewtwo", "-megay"}},
		{"Mega Latias", Parsed{"Latias", "-mega"}},
		{"Shadow Raikou", Parsed{"Raikou", ""}},
		{"Therian Forme Landorus", Parsed{"Landorus", "-therian"}},
		{"Origin Forme Giratina", Parsed{"Giratina", "-origin"}},
		{"Palkia (Origin Forme)", Parsed{"Palkia", "-origin"}},
		{"Landorus (Therian Form)", Parsed{"Landorus", "-therian"}},
		{"Deoxys (Normal)", Parsed{"Deoxys", ""}},
		{"Deoxys (Attack Forme)", Parsed{"Deoxys", "-attack"}},
		{"Genesect (Burn Drive)", Parsed{"Genesect", "-burn"}},
		{"Genesect", Parsed{"Genesect", "-normal"}},
		{"Pikachu", Parsed{"Pikachu", ""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseName(tt.in), tt.in)
	}
}
