package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceBillionMillion = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:tỷ|tỉ)\s*(\d+)\s*triệu`)
	priceBillion        = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:tỷ|tỉ)`)
	priceMillion        = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*triệu`)
	priceRawVND         = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3}){2,}|\d{7,}`)
)

// ParsePrice returns the asking price in millions of VND. Recognized forms,
// first match wins: "X tỷ Y triệu", "X tỷ", "X triệu" and a raw VND amount
// with or without thousands separators.
func ParsePrice(text string) *int {
	s := lower(text)
	if s == "" {
		return nil
	}

	if m := priceBillionMillion.FindStringSubmatch(s); m != nil {
		b, ok1 := parseDecimal(m[1])
		mil, err := strconv.Atoi(m[2])
		if ok1 && err == nil {
			return positive(int(math.Round(b*1000)) + mil)
		}
	}
	if m := priceBillion.FindStringSubmatch(s); m != nil {
		if b, ok := parseDecimal(m[1]); ok {
			return positive(int(math.Round(b * 1000)))
		}
	}
	if m := priceMillion.FindStringSubmatch(s); m != nil {
		if mil, ok := parseDecimal(m[1]); ok {
			return positive(int(math.Round(mil)))
		}
	}
	if m := priceRawVND.FindString(s); m != "" {
		vnd, err := strconv.ParseInt(digitsOnly(m), 10, 64)
		if err == nil {
			return positive(int(vnd / 1_000_000))
		}
	}
	return nil
}

// parseDecimal accepts either "." or "," as the decimal mark.
func parseDecimal(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
