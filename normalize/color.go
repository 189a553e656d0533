package normalize

type paletteEntry struct {
	key   string
	label string
}

// palette is ordered so that longer names win over their prefixes:
// "bạch kim" contains "bạc", "xanh dương" contains "xanh".
var palette = []paletteEntry{
	{"xanh dương", "Xanh dương"},
	{"xanh lá", "Xanh lá"},
	{"bạch kim", "Bạch kim"},
	{"trắng", "Trắng"},
	{"đen", "Đen"},
	{"bạc", "Bạc"},
	{"xám", "Xám"},
	{"ghi", "Ghi"},
	{"đỏ", "Đỏ"},
	{"xanh", "Xanh"},
	{"vàng", "Vàng"},
	{"cát", "Cát"},
	{"nâu", "Nâu"},
	{"cam", "Cam"},
}

// ParseColor returns the palette label of the first color named in text, or
// "" when none is recognized.
func ParseColor(text string) string {
	s := lower(text)
	if s == "" {
		return ""
	}
	for _, p := range palette {
		if containsWord(s, p.key) {
			return p.label
		}
	}
	return ""
}

// containsWord reports whether key occurs in s delimited by non-letters.
func containsWord(s, key string) bool {
	for i := 0; i+len(key) <= len(s); {
		j := indexFrom(s, key, i)
		if j < 0 {
			return false
		}
		end := j + len(key)
		if !letterBefore(s, j) && !letterAfter(s, end) {
			return true
		}
		i = j + 1
	}
	return false
}
