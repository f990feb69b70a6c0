// Package textnorm folds user text into a form suitable for phrase matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses runs of whitespace,
// so "  Añadir al CARRITO " and "anadir al carrito" compare equal.
func Fold(s string) string {
	lower := cases.Lower(language.Und).String(s)

	// transform.Chain keeps state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, lower)
	if err != nil {
		stripped = lower
	}

	return strings.Join(strings.Fields(stripped), " ")
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}
