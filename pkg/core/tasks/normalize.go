// Package tasks turns loosely structured tracker task records into typed
// values: field lookup by fuzzy name, type-directed decoding and weight
// classification.
package tasks

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, strips diacritics and collapses every run of
// non-alphanumeric runes (punctuation, emoji, whitespace) into one space.
// "📅 Data de Entrega:" becomes "data de entrega".
func Normalize(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// MatchesAny reports whether the normalised value equals or contains any of
// the normalised candidates
func MatchesAny(value string, candidates []string) bool {
	normalized := Normalize(value)
	if normalized == "" {
		return false
	}
	for _, candidate := range candidates {
		c := Normalize(candidate)
		if c != "" && strings.Contains(normalized, c) {
			return true
		}
	}
	return false
}

// EqualsAny reports whether the normalised value equals any normalised candidate
func EqualsAny(value string, candidates []string) bool {
	normalized := Normalize(value)
	if normalized == "" {
		return false
	}
	for _, candidate := range candidates {
		if Normalize(candidate) == normalized {
			return true
		}
	}
	return false
}
