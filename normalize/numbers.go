package normalize

import (
	"regexp"
	"strconv"
	"time"
)

var (
	yearPattern  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	seatsPattern = regexp.MustCompile(`(\d{1,2})\s*(?:chỗ|ghế|seats?)`)
	intPattern   = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+|\d+`)
)

// MinYear is the earliest model year accepted.
const MinYear = 1990

// ParseYear returns the first year in [MinYear, current year + 1] in text.
func ParseYear(text string) *int {
	maxYear := time.Now().Year() + 1
	for _, m := range yearPattern.FindAllString(CleanText(text), -1) {
		y, err := strconv.Atoi(m)
		if err == nil && y >= MinYear && y <= maxYear {
			return &y
		}
	}
	return nil
}

// ParseSeats reads "7 chỗ"-style text, or a bare seat count.
func ParseSeats(text string) *int {
	s := lower(text)
	if m := seatsPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return &n
		}
	}
	if n := ParseInt(s); n != nil && *n >= 2 && *n <= 50 {
		return n
	}
	return nil
}

// ParseInt returns the first integer in text, ignoring thousands separators.
func ParseInt(text string) *int {
	m := intPattern.FindString(CleanText(text))
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(digitsOnly(m))
	if err != nil {
		return nil
	}
	return &n
}
