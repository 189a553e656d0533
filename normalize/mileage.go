package normalize

import (
	"math"
	"regexp"
	"strconv"
)

var (
	mileageVan  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*vạn`)
	mileageKm   = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})+|\d+)\s*km`)
	mileageBare = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+|\d{4,}`)
)

// ParseMileage returns the odometer reading in the canonical "<int> km" form.
func ParseMileage(text string) *string {
	km := ParseMileageKm(text)
	if km == nil {
		return nil
	}
	s := strconv.Itoa(*km) + " km"
	return &s
}

// ParseMileageKm returns the odometer reading in kilometres. "N vạn" is
// N×10,000 km. A bare number without a unit is accepted only from four
// digits upward, so stray small numbers are not mistaken for mileage.
func ParseMileageKm(text string) *int {
	s := lower(text)
	if s == "" {
		return nil
	}

	if m := mileageVan.FindStringSubmatch(s); m != nil {
		if v, ok := parseDecimal(m[1]); ok {
			n := int(math.Round(v * 10_000))
			return &n
		}
	}
	if m := mileageKm.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(digitsOnly(m[1])); err == nil {
			return &n
		}
	}
	if m := mileageBare.FindString(s); m != "" {
		if n, err := strconv.Atoi(digitsOnly(m)); err == nil && n >= 1000 {
			return &n
		}
	}
	return nil
}
