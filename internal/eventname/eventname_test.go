package eventname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pokémon GO Fest &amp; Friends", "GO Fest & Friends"},
		{"Pokemon GO Tour: Unova", "GO Tour: Unova"},
		{"POKÉMON Spotlight Hour", "Spotlight Hour"},
		{"Lugia Raid Hour", "Lugia Raid Hour"},
		{"Farfetch&#39;d &amp; Friends", "Farfetch'd & Friends"},
		{"Tapu&nbsp;Koko", "Tapu Koko"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in), tt.in)
	}
}

func TestDecodeHTMLEntities(t *testing.T) {
	assert.Equal(t, `<a> "b" 'c'`, DecodeHTMLEntities("&lt;a&gt; &quot;b&quot; &apos;c&#39;"))
	assert.Equal(t, "é and A", DecodeHTMLEntities("&#233; and &#x41;"))
	assert.Equal(t, "no entities", DecodeHTMLEntities("no entities"))
}

func TestFormatKeepsInnerPokemonWord(t *testing.T) {
	assert.Equal(t, "Shiny Pokémon Week", Format("Shiny Pokémon Week"))
}
