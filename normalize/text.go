// Package normalize turns free-form Vietnamese marketplace text into typed,
// canonical listing fields. Every function is total: unrecognized input
// yields nil, an empty string or the Unknown category, never an error.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanText composes the text to NFC and collapses runs of whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// lower is CleanText followed by lowercasing. All keyword matching runs on it.
func lower(s string) string {
	return strings.ToLower(CleanText(s))
}

// TitleCase capitalizes each word, e.g. "trắng ngọc trai" -> "Trắng Ngọc Trai".
func TitleCase(s string) string {
	return cases.Title(language.Vietnamese).String(lower(s))
}

// Fold lowercases s and strips diacritics, mapping đ to d.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, lower(s))
	if err != nil {
		out = lower(s)
	}
	return strings.ReplaceAll(out, "đ", "d")
}

// containsAny reports whether any key occurs in text as a whole word or phrase.
func containsAny(text string, keys ...string) bool {
	for _, k := range keys {
		if containsWord(text, k) {
			return true
		}
	}
	return false
}
