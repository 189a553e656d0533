package services

import (
	"strconv"
	"strings"

	"car-scraper/models"
	"car-scraper/normalize"
	"car-scraper/scraper"
	"car-scraper/utils"
)

// CleanColumns is the header of the cleaned dataset.
var CleanColumns = []string{"brand", "model", "year", "mileage_km", "transmission", "fuel", "location", "price_vnd"}

// CleanListing is one row of the cleaned dataset. Price is in millions of
// VND like the raw records.
type CleanListing struct {
	Brand        string
	Model        string
	Year         int
	MileageKm    *int
	Transmission models.Gearbox
	Fuel         models.Fuel
	Location     string
	Price        int
}

func (l *CleanListing) Row() []string {
	mileage := ""
	if l.MileageKm != nil {
		mileage = strconv.Itoa(*l.MileageKm)
	}
	return []string{
		l.Brand, l.Model, strconv.Itoa(l.Year), mileage,
		string(l.Transmission), string(l.Fuel), l.Location, strconv.Itoa(l.Price),
	}
}

// CleanOptions bounds what the cleaner keeps.
type CleanOptions struct {
	// Brands is the allow-list, spelled as they should appear in the output.
	Brands     []string
	MinPrice   int
	MaxPrice   int
	MaxMileage int
}

// DefaultCleanOptions keeps the ten crawled brands priced between 5 million
// and 5 billion VND with at most 500,000 km.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		Brands:     []string{"Toyota", "VinFast", "Honda", "Hyundai", "Kia", "Mazda", "Suzuki", "BMW", "Ford", "Mercedes-Benz"},
		MinPrice:   5,
		MaxPrice:   5000,
		MaxMileage: 500_000,
	}
}

// Cleaner turns raw listing records into the minimal training dataset.
type Cleaner struct {
	opts   CleanOptions
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given options and logger.
func NewCleaner(opts CleanOptions, logger *utils.Logger) *Cleaner {
	return &Cleaner{opts: opts, logger: logger}
}

// Clean processes raw records and returns cleaned rows.
func (c *Cleaner) Clean(raw []*models.ListingRecord) []*CleanListing {
	seen := make(map[models.ListingURL]struct{})
	result := make([]*CleanListing, 0, len(raw))

	for _, r := range raw {
		if r.URL == "" {
			c.logger.Warn("[cleaner] Dropping record with empty URL: %s", r.Title)
			continue
		}
		if _, dup := seen[r.URL]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", r.URL)
			continue
		}
		seen[r.URL] = struct{}{}

		brand, ok := c.brand(r.Make)
		if !ok {
			c.logger.Debug("[cleaner] Brand %q not in allow-list: %s", r.Make, r.URL)
			continue
		}
		if r.PriceAmount == nil || r.Year == nil {
			continue
		}
		if *r.PriceAmount < c.opts.MinPrice || *r.PriceAmount > c.opts.MaxPrice {
			c.logger.Debug("[cleaner] Price outlier %d: %s", *r.PriceAmount, r.URL)
			continue
		}
		if r.MileageKm != nil && c.opts.MaxMileage > 0 && *r.MileageKm > c.opts.MaxMileage {
			c.logger.Debug("[cleaner] Mileage outlier %d: %s", *r.MileageKm, r.URL)
			continue
		}

		result = append(result, &CleanListing{
			Brand:        brand,
			Model:        normalize.CleanText(r.Model),
			Year:         *r.Year,
			MileageKm:    r.MileageKm,
			Transmission: r.Gearbox,
			Fuel:         r.Fuel,
			Location:     normalize.CleanText(r.Location),
			Price:        *r.PriceAmount,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// brand maps a raw make to its allow-listed spelling.
func (c *Cleaner) brand(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, b := range c.opts.Brands {
		if scraper.SameMake(b, raw) {
			return b, true
		}
	}
	return "", false
}
