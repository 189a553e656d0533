package models

import (
	"strconv"
	"time"
)

// RawDocument is the fetched content of one URL. It is discarded once the
// adapter has extracted what it needs.
type RawDocument struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	FetchedAt  time.Time
}

// ListingURL is a normalized, fragment-stripped absolute URL. It is the
// per-run dedup key for listings.
type ListingURL string

func (u ListingURL) String() string { return string(u) }

// Target is one crawl unit: a source, a brand, and optionally a model or a
// region, resolved to the index URL that lists them.
type Target struct {
	Source   string
	Make     string
	Model    string
	Region   string
	IndexURL string
}

func (t Target) String() string {
	s := t.Source + ":" + t.Make
	if t.Model != "" {
		s += "/" + t.Model
	}
	if t.Region != "" {
		s += "@" + t.Region
	}
	return s
}

// ListingRecord is one normalized car listing. Nullable fields are pointers
// or empty strings. A record is never modified after the adapter returns it.
type ListingRecord struct {
	SourceID     string
	AdID         string
	Make         string
	Model        string
	Version      string
	Title        string
	PriceAmount  *int // millions of VND
	MileageKm    *int
	Location     string
	Year         *int
	Fuel         Fuel
	Engine       string
	Gearbox      Gearbox
	Body         BodyType
	Color        string
	Seats        *int
	EnginePower  string
	Origin       Origin
	AccidentFree *bool
	SingleOwner  bool
	Description  string
	URL          ListingURL
}

// InsightReport holds the computed analytics over the accepted records.
type InsightReport struct {
	TotalListings      int
	ListingsBySource   map[string]int
	ListingsByMake     map[string]int
	ListingsByLocation map[string]int
	PricedListings     int
	AveragePrice       float64
	MinPrice           int
	MaxPrice           int
	MostExpensive      *ListingRecord
	AverageYear        float64
}

// Int returns a pointer to n. Convenience for building records.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
