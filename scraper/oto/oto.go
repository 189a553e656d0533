// Package oto reads car listings from oto.com.vn. Index pages load more
// results as they are scrolled, and the same results are also reachable as
// /pN pages; the adapter asks for both and the crawler unions them.
package oto

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
	SourceID = "oto"
	baseURL  = "https://oto.com.vn"
)

// DefaultModels is the catalogue crawled when no models are configured.
var DefaultModels = []string{
	"vios", "camry", "corolla-altis", "corolla-cross", "innova", "fortuner",
	"yaris", "wigo", "raize", "veloz", "avanza", "hilux", "land-cruiser", "rush",
}

var (
	adIDPattern = regexp.MustCompile(`aidxc(\d+)`)

	fuelCodes = map[string]models.Fuel{
		"1": models.FuelGasoline,
		"2": models.FuelDiesel,
		"3": models.FuelElectric,
		"4": models.FuelHybrid,
	}
	originCodes = map[string]models.Origin{
		"1": models.OriginDomestic,
		"2": models.OriginJapan,
		"3": models.OriginThailand,
		"4": models.OriginKorea,
	}
)

type Adapter struct {
	scope scraper.Scope
	base  string
	links scraper.LinkSet
}

func New(scope scraper.Scope) *Adapter {
	if len(scope.Models) == 0 {
		scope.Models = DefaultModels
	}
	base := scope.Base(baseURL)
	accept := regexp.MustCompile(`/mua-ban-xe-` + regexp.QuoteMeta(scope.Make) + `.*aidxc\d+`)
	return &Adapter{
		scope: scope,
		base:  base,
		links: scraper.LinkSet{
			Base:   base,
			Accept: accept,
			Strategies: []scraper.LinkStrategy{
				scraper.CardLinks("div.item-car", "h3.title a[href]", ".photo a[href]", "a[href]"),
				scraper.AnchorLinks(adIDPattern),
			},
		},
	}
}

func (a *Adapter) Source() string       { return SourceID }
func (a *Adapter) ExpectedMake() string { return a.scope.Make }

func (a *Adapter) Pagination() scraper.PaginationMode { return scraper.Both }

// DiscoverTargets returns one target per configured model. oto.com.vn has
// no usable model index, so nothing is fetched.
func (a *Adapter) DiscoverTargets(_ context.Context, _ fetcher.Fetcher) ([]models.Target, error) {
	targets := make([]models.Target, 0, len(a.scope.Models))
	for _, m := range a.scope.Models {
		targets = append(targets, models.Target{
			Source:   SourceID,
			Make:     a.scope.Make,
			Model:    m,
			IndexURL: a.base + "/mua-ban-xe-" + a.scope.Make + "-" + m,
		})
	}
	return targets, nil
}

func (a *Adapter) PageURL(t models.Target, n int) string {
	if n <= 1 {
		return t.IndexURL
	}
	return t.IndexURL + "/p" + strconv.Itoa(n)
}

func (a *Adapter) ListingLinksOnPage(doc *models.RawDocument) []models.ListingURL {
	return a.links.Collect(doc)
}

// ExtractListing prefers the hidden form inputs the page embeds for its own
// scripts and falls back to the visible info list.
func (a *Adapter) ExtractListing(raw *models.RawDocument, u models.ListingURL) (*models.ListingRecord, error) {
	doc, err := scraper.ParseDocument(raw)
	if err != nil {
		return nil, &scraper.ExtractionError{URL: u, Reason: err.Error()}
	}

	title := scraper.FirstText(doc.Selection, "h1.title-detail")
	hiddenPrice := hidden(doc, "hddPrice")
	if title == "" && hiddenPrice == "" {
		return nil, &scraper.ExtractionError{URL: u, Reason: "no h1.title-detail and no hddPrice"}
	}

	info := infoTable(doc)
	rec := &models.ListingRecord{
		SourceID: SourceID,
		AdID:     adID(u),
		Title:    title,
		URL:      u,
	}

	rec.Make = scraper.DisplayName(a.scope.Make)
	if mk, model, ok := scraper.TitleMakeModel(title, a.scope.Make, a.scope.Models); ok {
		rec.Make, rec.Model = mk, model
	}
	rec.Version = normalize.ParseVersion(title, rec.Make, rec.Model)

	if v, err := strconv.ParseInt(hiddenPrice, 10, 64); err == nil && v >= 1_000_000 {
		rec.PriceAmount = models.Int(int(v / 1_000_000))
	}
	if rec.PriceAmount == nil {
		rec.PriceAmount = normalize.ParsePrice(scraper.FirstText(doc.Selection, "div.box-price span.price", ".price"))
	}

	rec.Year = normalize.ParseYear(hidden(doc, "hddYear"))
	if rec.Year == nil {
		rec.Year = normalize.ParseYear(firstNonEmpty(info.Lookup("năm sx", "năm sản xuất"), title))
	}

	if n := normalize.ParseInt(hidden(doc, "numberOfSeat")); n != nil && *n > 0 {
		rec.Seats = n
	} else {
		rec.Seats = normalize.ParseSeats(info.Lookup("số chỗ"))
	}

	fuelText := info.Lookup("nhiên liệu")
	if f, ok := fuelCodes[hidden(doc, "fuelType")]; ok {
		rec.Fuel = f
	} else {
		rec.Fuel = normalize.ClassifyFuel(fuelText)
	}
	rec.Engine = info.Lookup("động cơ")

	if o, ok := originCodes[hidden(doc, "madeInBy")]; ok {
		rec.Origin = o
	} else {
		rec.Origin = normalize.ClassifyOrigin(info.Lookup("xuất xứ"))
	}

	rec.Body = normalize.ClassifyBody(firstNonEmpty(hidden(doc, "classificationName"), info.Lookup("kiểu dáng")))
	rec.MileageKm = normalize.ParseMileageKm(info.Lookup("km đã đi", "km đi"))
	rec.Gearbox = normalize.ClassifyGearbox(info.Lookup("hộp số"))
	rec.Location = info.Lookup("tỉnh thành")

	rec.Description = scraper.FirstText(doc.Selection, "div.description")
	if rec.Description == "" {
		rec.Description = scraper.ReadableDescription(raw)
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

// infoTable reads "div.box-info-detail ul.list-info li" rows. The value is a
// div.small when present, otherwise the row text after its label.
func infoTable(doc *goquery.Document) scraper.LabelTable {
	var tbl scraper.LabelTable
	doc.Find("div.box-info-detail ul.list-info li").Each(func(_ int, li *goquery.Selection) {
		labelSel := li.Find("label.label").First()
		if labelSel.Length() == 0 {
			return
		}
		label := normalize.CleanText(labelSel.Text())
		value := normalize.CleanText(li.Find("div.small").First().Text())
		if value == "" {
			rest := strings.TrimPrefix(normalize.CleanText(li.Text()), label)
			value = strings.TrimSpace(strings.TrimLeft(rest, ": "))
		}
		tbl.Add(label, value)
	})
	return tbl
}

func hidden(doc *goquery.Document, id string) string {
	return scraper.AttrOf(doc.Selection, "input#"+id, "value")
}

func adID(u models.ListingURL) string {
	if m := adIDPattern.FindStringSubmatch(string(u)); m != nil {
		return m[1]
	}
	return scraper.AdIDFromURL(u)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
