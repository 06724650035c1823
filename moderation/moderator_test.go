package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name:     "Uppercase is still matched",
			input:    "watch out for the SNAKE",
			expected: "watch out for the *****",
			words:    []string{"snake"},
		},
		{
			name: "Internal punctuation does not hide the word",
			// S (index 0) through E (index 8) -> 9 masked characters
			input:    "S-N-A-K-E is a b.a.d.g.e.r",
			expected: "********* is a ***********",
			words:    []string{"snake", "badger"},
		},
		{
			name:     "Accents elsewhere leave matching intact (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
			words:    []string{"badger"},
		},
		{
			name:     "Clean text passes through untouched",
			input:    "A perfectly nice message",
			expected: "A perfectly nice message",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			censored, hits := mod.Censor(tt.input)
			req.Equal(tt.expected, censored)
			req.Len(hits, len(tt.words))
			for i, word := range tt.words {
				req.Equal(word, hits[i])
			}
		})
	}
}

func TestModerator_BannedWordsNormalizedAtBuild(t *testing.T) {
	req := require.New(t)
	// The dictionary entry itself carries noise; it must still match the
	// plain word.
	mod, err := NewModerator([]string{"S.C.A.M"}, replacementChar)
	req.NoError(err)

	censored, hits := mod.Censor("total scam right there")
	req.Equal("total **** right there", censored)
	req.Len(hits, 1)
}

func TestModerator_EmptyInput(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger"}, replacementChar)
	req.NoError(err)

	censored, hits := mod.Censor("")
	req.Equal("", censored)
	req.Empty(hits)

	censored, hits = mod.Censor("...")
	req.Equal("...", censored)
	req.Empty(hits)
}
