// Package fetcher retrieves pages for the adapters: plain HTTP through colly,
// script-driven "load more" sessions through a headless browser, and a
// per-host politeness throttle that wraps either.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"car-scraper/models"
)

// Fetcher retrieves one URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.RawDocument, error)
}

// PageLoader opens an index page in a scriptable session that can trigger
// incremental loading.
type PageLoader interface {
	Open(ctx context.Context, url string) (ScrollSession, error)
}

// ScrollSession is one open index page. LoadMore triggers the page's
// incremental load and returns the whole accumulated document.
type ScrollSession interface {
	Document() *models.RawDocument
	LoadMore(ctx context.Context) (*models.RawDocument, error)
	Close() error
}

// ErrDisallowed is returned when robots.txt forbids the URL.
var ErrDisallowed = errors.New("fetch disallowed by robots.txt")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Gone reports whether the resource no longer exists.
func (e *StatusError) Gone() bool {
	return e.Code == http.StatusGone || e.Code == http.StatusNotFound
}
