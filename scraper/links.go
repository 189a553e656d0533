package scraper

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"car-scraper/models"
	"car-scraper/utils"
)

// LinkStrategy returns candidate hrefs from an index page, in page order.
type LinkStrategy func(doc *goquery.Document) []string

// CardLinks takes, from every element matching cardSelector, the href of the
// first anchor matching one of anchorSelectors (tried in order).
func CardLinks(cardSelector string, anchorSelectors ...string) LinkStrategy {
	if len(anchorSelectors) == 0 {
		anchorSelectors = []string{"a[href]"}
	}
	return func(doc *goquery.Document) []string {
		var out []string
		doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
			for _, sel := range anchorSelectors {
				a := card.Find(sel).First()
				if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
					out = append(out, href)
					return
				}
			}
			if href, ok := card.Attr("href"); ok {
				out = append(out, href)
			}
		})
		return out
	}
}

// AnchorLinks takes every anchor whose href matches pattern.
func AnchorLinks(pattern *regexp.Regexp) LinkStrategy {
	return func(doc *goquery.Document) []string {
		var out []string
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if pattern.MatchString(href) {
				out = append(out, href)
			}
		})
		return out
	}
}

// EmbeddedJSONLinks walks the JSON payload of scriptSelector (for example
// a Next.js __NEXT_DATA__ block) and collects string values of URL-like keys.
func EmbeddedJSONLinks(scriptSelector string) LinkStrategy {
	return func(doc *goquery.Document) []string {
		var out []string
		doc.Find(scriptSelector).Each(func(_ int, s *goquery.Selection) {
			var payload any
			if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
				return
			}
			walkJSON(payload, &out)
		})
		return out
	}
}

var urlKeys = map[string]bool{"url": true, "link": true, "href": true, "ad_url": true, "adUrl": true}

func walkJSON(v any, out *[]string) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := t[k]
			if s, ok := child.(string); ok && urlKeys[k] {
				*out = append(*out, s)
				continue
			}
			walkJSON(child, out)
		}
	case []any:
		for _, child := range t {
			walkJSON(child, out)
		}
	}
}

// LinkSet collects listing URLs for one page: strategies run in order, each
// href is resolved against Base and normalized, and only hrefs accepted by
// Accept (when set) are kept. Duplicates are dropped, first-seen order kept.
type LinkSet struct {
	Base       string
	Accept     *regexp.Regexp
	Strategies []LinkStrategy
}

func (ls LinkSet) Collect(raw *models.RawDocument) []models.ListingURL {
	if raw == nil || len(raw.Body) == 0 {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil
	}

	base := ls.Base
	if raw.FinalURL != "" {
		base = raw.FinalURL
	} else if raw.URL != "" {
		base = raw.URL
	}

	seen := make(map[string]struct{})
	var out []models.ListingURL
	for _, strategy := range ls.Strategies {
		for _, href := range strategy(doc) {
			key, err := utils.NormalizeURL(href, base)
			if err != nil {
				continue
			}
			if ls.Accept != nil && !ls.Accept.MatchString(key) {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, models.ListingURL(key))
		}
	}
	return out
}

var adIDTrim = regexp.MustCompile(`\.html?$`)

// AdIDFromURL returns the last path segment of u without an .htm/.html suffix.
func AdIDFromURL(u models.ListingURL) string {
	s := string(u)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return adIDTrim.ReplaceAllString(s, "")
}
