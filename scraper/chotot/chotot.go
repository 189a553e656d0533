// Package chotot reads car listings from xe.chotot.com, where index pages
// are per brand and region and detail pages carry itemprop annotations.
package chotot

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"car-scraper/fetcher"
	"car-scraper/models"
	"car-scraper/normalize"
	"car-scraper/scraper"
)

const (
	SourceID = "chotot"
	baseURL  = "https://xe.chotot.com"
)

// DefaultRegions are crawled when no regions are configured.
var DefaultRegions = []string{"tp-ho-chi-minh-sdcb2", "ha-noi-sdcb2", "da-nang-sdcb2"}

var (
	listingHref = regexp.MustCompile(`/\d+\.htm|/mua-ban-oto[^/]*/\d+`)
	cityPattern = regexp.MustCompile(`(?i)(Hà Nội|TP\.?\s*HCM|Tp Hồ Chí Minh|Hồ Chí Minh|Đà Nẵng|Hải Phòng|Cần Thơ)`)

	goneMarkers = []string{
		"tin đăng này đã hết hạn", "tin đăng không tồn tại", "tin đăng đã được ẩn", "tin đã bị xóa",
	}
)

type Adapter struct {
	scope scraper.Scope
	base  string
	links scraper.LinkSet
}

func New(scope scraper.Scope) *Adapter {
	if len(scope.Regions) == 0 {
		scope.Regions = DefaultRegions
	}
	base := scope.Base(baseURL)
	return &Adapter{
		scope: scope,
		base:  base,
		links: scraper.LinkSet{
			Base:   base,
			Accept: regexp.MustCompile(`/mua-ban-oto[^?]*/\d+(?:\.htm)?$|/\d+\.htm$`),
			Strategies: []scraper.LinkStrategy{
				scraper.EmbeddedJSONLinks("script#__NEXT_DATA__"),
				scraper.CardLinks("[class*='AdItem'], [class*='ad-item'], [class*='listing-item']", "a[href]"),
				scraper.AnchorLinks(listingHref),
			},
		},
	}
}

func (a *Adapter) Source() string       { return SourceID }
func (a *Adapter) ExpectedMake() string { return a.scope.Make }

func (a *Adapter) Pagination() scraper.PaginationMode { return scraper.Numbered }

// DiscoverTargets returns one target per region for the brand.
func (a *Adapter) DiscoverTargets(_ context.Context, _ fetcher.Fetcher) ([]models.Target, error) {
	targets := make([]models.Target, 0, len(a.scope.Regions))
	for _, r := range a.scope.Regions {
		targets = append(targets, models.Target{
			Source:   SourceID,
			Make:     a.scope.Make,
			Region:   r,
			IndexURL: a.base + "/mua-ban-oto-" + a.scope.Make + "-" + r,
		})
	}
	return targets, nil
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

// ExtractListing reads the itemprop-annotated parameter list of a detail page.
func (a *Adapter) ExtractListing(raw *models.RawDocument, u models.ListingURL) (*models.ListingRecord, error) {
	doc, err := scraper.ParseDocument(raw)
	if err != nil {
		return nil, &scraper.ExtractionError{URL: u, Reason: err.Error()}
	}
	doc.Find("script").Remove()

	pageText := strings.ToLower(scraper.PageText(doc))
	for _, marker := range goneMarkers {
		if strings.Contains(pageText, marker) {
			return nil, scraper.ErrListingGone
		}
	}

	title := scraper.FirstText(doc.Selection, "h1")
	brand := prop(doc, "carbrand")
	if title == "" && brand == "" {
		return nil, &scraper.ExtractionError{URL: u, Reason: "no title and no carbrand"}
	}

	rec := &models.ListingRecord{
		SourceID: SourceID,
		AdID:     scraper.AdIDFromURL(u),
		Title:    title,
		URL:      u,
		Make:     brand,
		Model:    prop(doc, "carmodel"),
	}
	if rec.Make == "" {
		rec.Make = scraper.DisplayName(a.scope.Make)
	}

	rec.Year = normalize.ParseYear(prop(doc, "mfdate"))
	if rec.Year == nil {
		rec.Year = normalize.ParseYear(title)
	}

	mileage := prop(doc, "mileage_v2")
	rec.MileageKm = normalize.ParseMileageKm(mileage)
	if rec.MileageKm == nil {
		rec.MileageKm = normalize.ParseInt(mileage)
	}

	fuel := prop(doc, "fuel")
	rec.Fuel = normalize.ClassifyFuel(fuel)
	rec.Gearbox = normalize.ClassifyGearbox(prop(doc, "gearbox"))
	rec.Body = normalize.ClassifyBody(prop(doc, "cartype"))
	rec.Seats = normalize.ParseSeats(prop(doc, "carseats"))
	rec.Origin = normalize.ClassifyOrigin(prop(doc, "carorigin"))
	rec.Engine = engine(fuel, prop(doc, "engine_capacity"))
	rec.EnginePower = prop(doc, "horse_power")

	rec.PriceAmount = normalize.ParsePrice(scraper.FirstText(doc.Selection, "[itemprop='price']", "[class*='price']", "b[class*='Price']"))
	if rec.PriceAmount == nil {
		rec.PriceAmount = normalize.ParsePrice(title)
	}

	rec.Location = location(doc)

	rec.Description = prop(doc, "description")
	if rec.Description == "" {
		rec.Description = scraper.ReadableDescription(raw)
	}

	rec.Version = prop(doc, "option")
	if rec.Version == "" {
		rec.Version = normalize.ParseVersion(title, rec.Make, rec.Model)
	}
	if rec.Version == "" {
		rec.Version = normalize.ParseVersion(rec.Description, rec.Make, rec.Model)
	}

	rec.Color = normalize.ParseColor(rec.Description)
	if rec.Color == "" {
		rec.Color = normalize.ParseColor(title)
	}

	claims := rec.Description + " " + title
	rec.AccidentFree = normalize.DetectAccidentFree(claims)
	rec.SingleOwner = normalize.DetectSingleOwner(claims)
	return rec, nil
}

func prop(doc *goquery.Document, name string) string {
	return scraper.FirstText(doc.Selection, "[itemprop='"+name+"']")
}

// engine renders e.g. "Xăng 1.5 L".
func engine(fuel, capacity string) string {
	capacity = strings.TrimSpace(capacity)
	if capacity != "" && !strings.ContainsAny(strings.ToLower(capacity), "lc") {
		capacity += " L"
	}
	return strings.TrimSpace(fuel + " " + capacity)
}

func location(doc *goquery.Document) string {
	if loc := scraper.FirstText(doc.Selection, "[class*='location']", "[itemprop='address']"); loc != "" {
		if m := cityPattern.FindString(loc); m != "" {
			return m
		}
		return loc
	}
	return cityPattern.FindString(scraper.PageText(doc))
}
