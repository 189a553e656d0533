// Package bonbanh reads car listings from bonbanh.com.
package bonbanh

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"car-scraper/fetcher"
	"car-scraper/models"
	"car-scraper/normalize"
	"car-scraper/scraper"
)

const (
	// SourceID names this marketplace in records and logs.
	SourceID = "bonbanh"
	baseURL  = "https://bonbanh.com"
)

var (
	titleMakeModel = regexp.MustCompile(`(?i)xe\s+(\S+)\s+(\S+)`)
	adIDSuffix     = regexp.MustCompile(`-(\d+)$`)
	addressLine    = regexp.MustCompile(`(?i)địa chỉ:\s*([^\n]+?)\s*(?:\n|website|$)`)
	listingHref    = regexp.MustCompile(`^(?:https?://[^/]*bonbanh\.com)?/xe-`)
	acceptListing  = regexp.MustCompile(`/xe-[^/]+$`)

	descriptionSelectors = []string{
		".car-description", ".detail-content", ".description", "#car-description", "[class*='desc']",
	}
)

// Adapter crawls one brand on bonbanh.com.
type Adapter struct {
	scope scraper.Scope
	base  string
	links scraper.LinkSet

	mu    sync.RWMutex
	known []string // configured or discovered model slugs
}

func New(scope scraper.Scope) *Adapter {
	base := scope.Base(baseURL)
	return &Adapter{
		scope: scope,
		base:  base,
		known: scope.Models,
		links: scraper.LinkSet{
			Base:   base,
			Accept: acceptListing,
			Strategies: []scraper.LinkStrategy{
				scraper.CardLinks("li.car-item, div.car-item", "a[href]"),
				scraper.AnchorLinks(listingHref),
			},
		},
	}
}

func (a *Adapter) Source() string       { return SourceID }
func (a *Adapter) ExpectedMake() string { return a.scope.Make }

func (a *Adapter) Pagination() scraper.PaginationMode { return scraper.Numbered }

// DiscoverTargets returns one target per model. With no configured models
// the brand page is fetched and its model links are used.
func (a *Adapter) DiscoverTargets(ctx context.Context, f fetcher.Fetcher) ([]models.Target, error) {
	brand := a.scope.Make
	modelSlugs := a.scope.Models
	if len(modelSlugs) == 0 {
		brandURL := a.base + "/oto/" + brand
		doc, err := f.Fetch(ctx, brandURL)
		if err != nil {
			return nil, fmt.Errorf("bonbanh: discover %s models: %w", brand, err)
		}
		modelSlugs, err = discoverModels(doc, brand)
		if err != nil {
			return nil, err
		}
		if len(modelSlugs) == 0 {
			return nil, fmt.Errorf("bonbanh: no models found on %s", brandURL)
		}
		a.mu.Lock()
		a.known = modelSlugs
		a.mu.Unlock()
	}

	targets := make([]models.Target, 0, len(modelSlugs))
	for _, m := range modelSlugs {
		targets = append(targets, models.Target{
			Source:   SourceID,
			Make:     brand,
			Model:    m,
			IndexURL: a.base + "/oto/" + brand + "-" + m,
		})
	}
	return targets, nil
}

// discoverModels reads model slugs from the /oto/{brand}-{model} links of a
// brand page, skipping condition, year, color and seat facets.
func discoverModels(raw *models.RawDocument, brand string) ([]string, error) {
	doc, err := scraper.ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	pattern := regexp.MustCompile(`^/oto/` + regexp.QuoteMeta(brand) + `-([a-z0-9-]+)$`)

	seen := make(map[string]bool)
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if u, err := url.Parse(href); err == nil {
			href = u.Path
		}
		m := pattern.FindStringSubmatch(strings.TrimRight(href, "/"))
		if m == nil || isFacet(m[1]) || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		out = append(out, m[1])
	})
	return out, nil
}

func isFacet(slug string) bool {
	for _, prefix := range []string{"nam-", "mau-", "so-"} {
		if strings.HasPrefix(slug, prefix) || strings.Contains(slug, "-"+prefix) {
			return true
		}
	}
	for _, tok := range strings.Split(slug, "-") {
		if tok == "cu" || tok == "moi" {
			return true
		}
	}
	return false
}

func (a *Adapter) PageURL(t models.Target, n int) string {
	if n <= 1 {
		return t.IndexURL
	}
	return t.IndexURL + "?page=" + strconv.Itoa(n)
}

func (a *Adapter) ListingLinksOnPage(doc *models.RawDocument) []models.ListingURL {
	return a.links.Collect(doc)
}

// ExtractListing reads the title block, the box_car_detail rows and the
// seller contact box of a detail page.
func (a *Adapter) ExtractListing(raw *models.RawDocument, u models.ListingURL) (*models.ListingRecord, error) {
	doc, err := scraper.ParseDocument(raw)
	if err != nil {
		return nil, &scraper.ExtractionError{URL: u, Reason: err.Error()}
	}

	title := scraper.FirstText(doc.Selection, "h1.car-title", "h1")
	detail := doc.Find("div.box_car_detail")
	if title == "" && detail.Length() == 0 {
		return nil, &scraper.ExtractionError{URL: u, Reason: "no title and no detail box"}
	}
	if title == "" {
		title = strings.TrimSpace(strings.Split(scraper.FirstText(doc.Selection, "title"), "|")[0])
	}

	var tbl scraper.LabelTable
	detail.Find("div[class*='row']").Each(func(_ int, row *goquery.Selection) {
		value := normalize.CleanText(row.Find("span.inp").First().Text())
		label := normalize.CleanText(row.Find("label").First().Text())
		if label == "" {
			label = normalize.CleanText(row.Text())
		}
		if value == "" {
			value = normalize.CleanText(strings.TrimPrefix(normalize.CleanText(row.Text()), label))
		}
		tbl.Add(label, value)
	})

	rec := &models.ListingRecord{
		SourceID: SourceID,
		AdID:     adID(u),
		Title:    title,
		URL:      u,
	}

	if mk, model, ok := scraper.TitleMakeModel(title, a.scope.Make, a.knownModels()); ok {
		rec.Make, rec.Model = mk, model
	} else if m := titleMakeModel.FindStringSubmatch(title); m != nil {
		rec.Make, rec.Model = m[1], m[2]
	} else if words := strings.Fields(title); len(words) >= 2 && scraper.SameMake(a.scope.Make, words[0]) {
		rec.Make, rec.Model = words[0], words[1]
	}
	if rec.Make == "" {
		rec.Make = scraper.DisplayName(a.scope.Make)
	}
	rec.Version = normalize.ParseVersion(title, rec.Make, rec.Model)

	rec.PriceAmount = normalize.ParsePrice(scraper.FirstText(doc.Selection, "[class*='price']", "[class*='gia']"))
	if rec.PriceAmount == nil {
		rec.PriceAmount = normalize.ParsePrice(title)
	}

	rec.MileageKm = normalize.ParseMileageKm(tbl.Lookup("đã đi", "số km", "km đi"))
	rec.Year = normalize.ParseYear(tbl.Lookup("năm sản xuất", "năm sx"))
	if rec.Year == nil {
		rec.Year = normalize.ParseYear(title)
	}

	rec.Engine = tbl.Lookup("động cơ")
	rec.Fuel = normalize.ClassifyFuel(firstNonEmpty(tbl.Lookup("nhiên liệu"), rec.Engine))
	rec.Gearbox = normalize.ClassifyGearbox(tbl.Lookup("hộp số"))
	rec.Body = normalize.ClassifyBody(tbl.Lookup("kiểu dáng", "loại xe"))
	rec.Seats = normalize.ParseSeats(tbl.Lookup("số chỗ", "chỗ ngồi"))
	rec.Origin = normalize.ClassifyOrigin(tbl.Lookup("xuất xứ"))

	if color := tbl.Lookup("màu ngoại thất"); color != "" {
		rec.Color = normalize.ParseColor(color)
		if rec.Color == "" {
			rec.Color = normalize.TitleCase(color)
		}
	}

	rec.Location = contactLocation(doc)

	rec.Description = scraper.FirstText(doc.Selection, descriptionSelectors...)
	if rec.Description == "" {
		rec.Description = scraper.ReadableDescription(raw)
	}

	claims := title + " " + rec.Description
	rec.AccidentFree = normalize.DetectAccidentFree(claims)
	rec.SingleOwner = normalize.DetectSingleOwner(claims)
	return rec, nil
}

func (a *Adapter) knownModels() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.known
}

// contactLocation is the province: the last comma part of the seller address.
func contactLocation(doc *goquery.Document) string {
	text := doc.Find("div.contact-box .contact-txt").First().Text()
	m := addressLine.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	parts := strings.Split(m[1], ",")
	return normalize.CleanText(parts[len(parts)-1])
}

func adID(u models.ListingURL) string {
	id := scraper.AdIDFromURL(u)
	if m := adIDSuffix.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	return id
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
