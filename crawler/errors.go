package crawler

import (
	"context"
	"errors"

	"car-scraper/fetcher"
	"car-scraper/scraper"
)

// Class is the failure category a per-URL or per-target error falls in.
// Every class is counted; none of them aborts the run.
type Class int

const (
	// ExpectedAbsence is a listing that was removed (HTTP 410/404 or a
	// "listing expired" page).
	ExpectedAbsence Class = iota
	// TransientFetch is a transport error, an unexpected status or a failed
	// index page.
	TransientFetch
	// ExtractionMismatch is a page that is not a listing, or a listing of
	// another make.
	ExtractionMismatch
	// ConfigurationFault is a target that yields no links at all, or a
	// source whose discovery failed.
	ConfigurationFault
)

var classNames = [...]string{"expected_absence", "transient_fetch", "extraction_mismatch", "configuration_fault"}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Classes lists every class in display order.
func Classes() []Class {
	return []Class{ExpectedAbsence, TransientFetch, ExtractionMismatch, ConfigurationFault}
}

var (
	// ErrMakeMismatch marks a listing whose make differs from the target's.
	ErrMakeMismatch = errors.New("listing make does not match target")
	// ErrNoLinks marks a target whose index produced no listing links.
	ErrNoLinks = errors.New("target produced no listing links")
)

// indexError wraps a failure to load an index page or a further batch of
// one. It is TransientFetch even for a 404, or ConfigurationFault when
// robots.txt forbids the page; ExpectedAbsence is kept for listings.
type indexError struct {
	err error
}

func (e *indexError) Error() string { return e.err.Error() }
func (e *indexError) Unwrap() error { return e.err }

// Classify maps an error to its Class. Unrecognized errors are treated as
// transient.
func Classify(err error) Class {
	var (
		status *fetcher.StatusError
		index  *indexError
	)
	switch {
	case errors.As(err, &index):
		if errors.Is(err, fetcher.ErrDisallowed) {
			return ConfigurationFault
		}
		return TransientFetch
	case errors.Is(err, scraper.ErrListingGone):
		return ExpectedAbsence
	case errors.As(err, &status):
		if status.Gone() {
			return ExpectedAbsence
		}
		return TransientFetch
	case errors.Is(err, scraper.ErrNotListing), errors.Is(err, ErrMakeMismatch):
		return ExtractionMismatch
	case errors.Is(err, ErrNoLinks), errors.Is(err, fetcher.ErrDisallowed):
		return ConfigurationFault
	default:
		return TransientFetch
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
