// Package scraper defines the contract every marketplace adapter implements
// and the shared machinery adapters are built from: link-selection
// strategies, label/value table scans and the pagination strategies.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"car-scraper/fetcher"
	"car-scraper/models"
	"car-scraper/normalize"
)

// PaginationMode says how a source's index pages are enumerated.
type PaginationMode int

const (
	// Numbered sources expose ?page=N style index pages.
	Numbered PaginationMode = iota
	// Incremental sources append results in place when scrolled.
	Incremental
	// Both runs numbered pages and incremental loading and unions them.
	Both
)

// Adapter is one marketplace configured for one brand.
type Adapter interface {
	// Source names the marketplace, e.g. "bonbanh".
	Source() string
	// ExpectedMake is the brand this adapter instance targets.
	ExpectedMake() string
	// DiscoverTargets enumerates the index pages to crawl. Sources with
	// dynamic discovery fetch a brand page through f.
	DiscoverTargets(ctx context.Context, f fetcher.Fetcher) ([]models.Target, error)
	Pagination() PaginationMode
	// PageURL is the URL of numbered index page n (1-based).
	PageURL(t models.Target, n int) string
	// ListingLinksOnPage returns the listing detail URLs on an index page.
	ListingLinksOnPage(doc *models.RawDocument) []models.ListingURL
	// ExtractListing builds a record from a detail page. It returns
	// ErrListingGone for removed listings and an *ExtractionError when the
	// page does not look like a listing.
	ExtractListing(doc *models.RawDocument, u models.ListingURL) (*models.ListingRecord, error)
}

var (
	// ErrListingGone means the detail page states the listing was removed.
	ErrListingGone = errors.New("listing no longer available")
	// ErrNotListing means the page lacks the anchors every listing has.
	ErrNotListing = errors.New("page is not a listing")
)

// ExtractionError describes a detail page the adapter could not read.
type ExtractionError struct {
	URL    models.ListingURL
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return ErrNotListing }

// SameMake compares brand names ignoring case, diacritics and separators.
// A prefix match counts, so "Mercedes" matches "Mercedes-Benz". An empty
// extracted make never matches.
func SameMake(expected, got string) bool {
	e, g := makeKey(expected), makeKey(got)
	if e == "" || g == "" {
		return false
	}
	return e == g || strings.HasPrefix(e, g) || strings.HasPrefix(g, e)
}

func makeKey(s string) string {
	var b strings.Builder
	for _, r := range normalize.Fold(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
