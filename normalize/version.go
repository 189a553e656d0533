package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	versionGeneric = regexp.MustCompile(`\d\.\d\s*[A-Z]+(?:\s+[A-Z][A-Z0-9]{0,3})*`)
	versionNoise   = regexp.MustCompile(`(?i)\s(?:japan|chính chủ|cavet|chủ|màu|xe|chỗ|số|tự động|chạy|xăng|km|bán)(?:\s.*)?$`)
	slugSeparator  = regexp.MustCompile(`[\s_-]+`)
)

// ParseVersion extracts the trim/version designation (e.g. "1.5G", "2.4G AT")
// from a listing title. It tries, in order: the text between model and
// model year, a digit-led token right after the model, and finally any
// "decimal number followed by capitals" token in the title. The first
// plausible candidate wins; "" when none is found.
func ParseVersion(title, brand, model string) string {
	t := CleanText(title)
	if t == "" {
		return ""
	}

	if anchor := makeModelAnchor(brand, model); anchor != "" {
		withYear, err := regexp.Compile(anchor + `(.+?)\s+(?:19|20)\d{2}\b`)
		if err == nil {
			if m := withYear.FindStringSubmatch(t); m != nil {
				if v := trimVersion(m[1]); plausibleVersion(v) {
					return v
				}
			}
		}
		noYear, err := regexp.Compile(anchor + `(\d+(?:\.\d+)?\s*[A-Z]+(?:\s+[A-Z][A-Z0-9]*)?)`)
		if err == nil {
			if m := noYear.FindStringSubmatch(t); m != nil {
				if v := trimVersion(m[1]); plausibleVersion(v) {
					return v
				}
			}
		}
	}

	for _, c := range versionGeneric.FindAllString(t, -1) {
		if v := trimVersion(c); plausibleVersion(v) {
			return v
		}
	}
	return ""
}

// makeModelAnchor builds a case-insensitive "<make> <model> " prefix pattern.
// Slug separators in either name match spaces or hyphens in the title.
func makeModelAnchor(brand, model string) string {
	mk, md := SlugPattern(brand), SlugPattern(model)
	if mk == "" || md == "" {
		return ""
	}
	return `(?i:` + mk + `)\s+(?i:` + md + `)\s+`
}

// SlugPattern turns a slug or display name into a regexp fragment in which
// every separator matches runs of spaces or hyphens.
func SlugPattern(s string) string {
	parts := slugSeparator.Split(strings.TrimSpace(s), -1)
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	return strings.Join(quoted, `[\s-]+`)
}

// trimVersion cuts the candidate at the first word that is known not to be
// part of a version (owner, color, paperwork, gearbox words).
func trimVersion(c string) string {
	c = versionNoise.ReplaceAllString(" "+c, "")
	return strings.Trim(c, " -,.:;/|")
}

func plausibleVersion(v string) bool {
	if v == "" || utf8.RuneCountInString(v) > 30 {
		return false
	}
	if strings.ContainsAny(v, "0123456789") {
		return true
	}
	if utf8.RuneCountInString(v) > 5 {
		return false
	}
	hasLetter := false
	for _, r := range v {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
