package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"simple", "sandy rocket", []string{"sandy", "rocket"}},
		{"uppercase", "Sandy ROCKET", []string{"sandy", "rocket"}},
		{"punctuation stripped", "¿Sandy's rocket?!", []string{"sandys", "rocket"}},
		{"stop words dropped", "el cohete de Sandy", []string{"cohete", "sandy"}},
		{"short tokens dropped", "ab abc a", []string{"abc"}},
		{"length counted in runes", "ñu ñus año", []string{"ñus", "año"}},
		{"accents kept", "canción del caracol", []string{"canción", "caracol"}},
		{"short numbers dropped", "temporada 10", []string{"temporada"}},
		{"three digit number", "episodio 101", []string{"episodio", "101"}},
		{"duplicates kept", "gary gary", []string{"gary", "gary"}},
		{"extra whitespace", "  gary\t\nsnail  ", []string{"gary", "snail"}},
		{"all stop words", "y o de", nil},
		{"empty", "", nil},
		{"only symbols", "!@#$%^&*()", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.query))
		})
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	q := "¿Qué pasó con el cohete de Sandy en la temporada uno?"
	first := Tokenize(q)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Tokenize(q))
	}
}

func TestTokenize_NoStopWordsOrShortTokens(t *testing.T) {
	for word := range StopWords {
		assert.Empty(t, Tokenize(word), "stop word %q should be dropped", word)
	}
	assert.Empty(t, Tokenize("xy zw ñu"))
}
