package scraper

import (
	"regexp"
	"sort"
	"strings"

	"car-scraper/normalize"
)

// Scope is what one adapter instance is configured to crawl.
type Scope struct {
	// Make is the brand slug as the source spells it in URLs, e.g.
	// "toyota" or "mercedes-benz".
	Make string
	// Models are model slugs. Sources with dynamic discovery fill an empty
	// list from the brand page.
	Models []string
	// Regions are region slugs for sources indexed by location.
	Regions []string
	// BaseURL overrides the marketplace origin.
	BaseURL string
}

// Base returns the configured origin or def, without a trailing slash.
func (s Scope) Base(def string) string {
	if s.BaseURL != "" {
		return strings.TrimRight(s.BaseURL, "/")
	}
	return def
}

// DisplayName turns a slug into a display name: "corolla-altis" ->
// "Corolla Altis".
func DisplayName(slug string) string {
	return normalize.TitleCase(strings.ReplaceAll(slug, "-", " "))
}

// TitleMakeModel finds the make in a listing title and the model that
// follows it, both as the title spells them. Known model slugs are tried
// longest display name first so "Corolla Altis" wins over "Corolla"; when
// none matches, the word after the make is the model. ok is false when the
// make does not appear in the title.
func TitleMakeModel(title, makeSlug string, modelSlugs []string) (mk, model string, ok bool) {
	t := normalize.CleanText(title)
	re := wordPattern(makeSlug, false)
	if re == nil {
		return "", "", false
	}
	loc := re.FindStringSubmatchIndex(t)
	if loc == nil {
		return "", "", false
	}
	mk, rest := t[loc[2]:loc[3]], t[loc[3]:]

	candidates := append([]string(nil), modelSlugs...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(DisplayName(candidates[i])) > len(DisplayName(candidates[j]))
	})
	for _, slug := range candidates {
		if re := wordPattern(slug, true); re != nil {
			if m := re.FindStringSubmatch(rest); m != nil {
				return mk, m[1], true
			}
		}
	}

	if words := strings.Fields(rest); len(words) > 0 {
		model = words[0]
	}
	return mk, model, true
}

// wordPattern matches s as whole words, ignoring case. A leading pattern
// must open the text.
func wordPattern(s string, leading bool) *regexp.Regexp {
	p := normalize.SlugPattern(s)
	if p == "" {
		return nil
	}
	start := `(?:^|\s)`
	if leading {
		start = `^\s*`
	}
	return regexp.MustCompile(`(?i)` + start + `(` + p + `)(?:[\s,]|$)`)
}
