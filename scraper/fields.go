package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"car-scraper/models"
	"car-scraper/normalize"
)

// minDescriptionLen is the shortest readability text accepted as a
// description; shorter output is usually navigation chrome.
const minDescriptionLen = 40

// ParseDocument parses a fetched page for goquery.
func ParseDocument(raw *models.RawDocument) (*goquery.Document, error) {
	if raw == nil || len(raw.Body) == 0 {
		return nil, fmt.Errorf("parse document: empty body")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", raw.URL, err)
	}
	return doc, nil
}

// FirstText returns the cleaned text of the first selector that yields
// non-empty text.
func FirstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := normalize.CleanText(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// AttrOf returns the trimmed attribute of the first element matching selector.
func AttrOf(s *goquery.Selection, selector, attr string) string {
	v, _ := s.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// LabelRow is one label/value pair of a detail table.
type LabelRow struct {
	Label string
	Value string
}

// LabelTable holds the label/value rows of a listing's detail block.
type LabelTable []LabelRow

// Add appends a row, ignoring rows without a value.
func (t *LabelTable) Add(label, value string) {
	label = normalize.CleanText(strings.TrimRight(strings.TrimSpace(label), ":"))
	value = normalize.CleanText(value)
	if label == "" || value == "" {
		return
	}
	*t = append(*t, LabelRow{Label: label, Value: value})
}

// Lookup returns the value of the first row whose label contains one of the
// keywords, compared case-insensitively.
func (t LabelTable) Lookup(keywords ...string) string {
	for _, row := range t {
		l := strings.ToLower(row.Label)
		for _, k := range keywords {
			if strings.Contains(l, k) {
				return row.Value
			}
		}
	}
	return ""
}

// PageText is the cleaned visible text of the page body.
func PageText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		return normalize.CleanText(doc.Text())
	}
	clone := body.Clone()
	clone.Find("script, style, noscript").Remove()
	return normalize.CleanText(clone.Text())
}

// ReadableDescription extracts the main text block of a page. Adapters use
// it when none of their description selectors match.
func ReadableDescription(raw *models.RawDocument) string {
	if raw == nil || len(raw.Body) == 0 {
		return ""
	}
	pageURL, err := url.Parse(raw.URL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(raw.Body), pageURL)
	if err != nil {
		return ""
	}
	text := normalize.CleanText(article.TextContent)
	if len([]rune(text)) < minDescriptionLen {
		return ""
	}
	return text
}
