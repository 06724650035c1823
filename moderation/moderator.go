// Package moderation censors abusive terms in outbound message text
// before it reaches the store.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator matches a banned-word list against normalized text with an
// Aho-Corasick automaton and masks the matched spans in the original.
type Moderator struct {
	matcher  *goahocorasick.Machine
	maskChar rune
}

// textMapping links the normalized search text back to rune positions in
// the original, so masking preserves spacing and punctuation.
type textMapping struct {
	normalized []rune
	origIdx    []int
}

func NewModerator(bannedWords []string, maskChar rune) (*Moderator, error) {
	patterns := make([][]rune, len(bannedWords))
	for i, word := range bannedWords {
		patterns[i] = normalizeRunes([]rune(word))
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, maskChar: maskChar}, nil
}

// Censor masks every banned span in original and returns the censored
// text together with the normalized words that were hit.
func (m *Moderator) Censor(original string) (string, []string) {
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	var hits []string
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		hits = append(hits, string(span.Word))
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			origRunes[i] = m.maskChar
		}
	}
	return string(origRunes), hits
}

// normalize lowercases the input and strips punctuation, spacing and
// symbols, keeping an index map back to the original runes.
func normalize(input string) textMapping {
	origRunes := []rune(input)
	mapping := textMapping{
		normalized: make([]rune, 0, len(origRunes)),
		origIdx:    make([]int, 0, len(origRunes)),
	}
	for i, r := range origRunes {
		if isNoise(r) {
			continue
		}
		mapping.normalized = append(mapping.normalized, unicode.ToLower(r))
		mapping.origIdx = append(mapping.origIdx, i)
	}
	return mapping
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
