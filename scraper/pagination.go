package scraper

import (
	"context"
	"errors"
	"fmt"

	"car-scraper/fetcher"
	"car-scraper/models"
)

// ErrEndOfStream is returned by NextBatch once a strategy is exhausted.
var ErrEndOfStream = errors.New("end of stream")

// Strategy enumerates the listing URLs of one target, one batch at a time.
// A batch may be empty. Each strategy instance serves a single target.
type Strategy interface {
	NextBatch(ctx context.Context) ([]models.ListingURL, error)
	Close() error
}

// Limits bound how far a strategy walks a target.
type Limits struct {
	MaxPages           int
	EmptyPageTolerance int
	MaxLoadAttempts    int
	StaleLoadLimit     int
}

func (l Limits) withDefaults() Limits {
	if l.MaxPages <= 0 {
		l.MaxPages = 50
	}
	if l.EmptyPageTolerance <= 0 {
		l.EmptyPageTolerance = 2
	}
	if l.MaxLoadAttempts <= 0 {
		l.MaxLoadAttempts = 30
	}
	if l.StaleLoadLimit <= 0 {
		l.StaleLoadLimit = 3
	}
	return l
}

// LinkExtractor pulls listing URLs out of an index document.
type LinkExtractor func(doc *models.RawDocument) []models.ListingURL

// NumberedPages walks index pages 1, 2, ... It stops after
// EmptyPageTolerance consecutive pages without new links, or at MaxPages.
// A page whose links were all returned before counts as empty, which ends
// sources that serve their last page for any out-of-range page number.
type NumberedPages struct {
	fetch     fetcher.Fetcher
	pageURL   func(n int) string
	links     LinkExtractor
	maxPages  int
	tolerance int

	page  int
	empty int
	seen  map[models.ListingURL]struct{}
}

func NewNumberedPages(f fetcher.Fetcher, pageURL func(n int) string, links LinkExtractor, limits Limits) *NumberedPages {
	limits = limits.withDefaults()
	return &NumberedPages{
		fetch:     f,
		pageURL:   pageURL,
		links:     links,
		maxPages:  limits.MaxPages,
		tolerance: limits.EmptyPageTolerance,
		seen:      make(map[models.ListingURL]struct{}),
	}
}

// NextBatch fetches the next page. A failed fetch counts as an empty page
// and its error is returned so the caller can classify it.
func (p *NumberedPages) NextBatch(ctx context.Context) ([]models.ListingURL, error) {
	if p.empty >= p.tolerance || p.page >= p.maxPages {
		return nil, ErrEndOfStream
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.page++
	u := p.pageURL(p.page)
	doc, err := p.fetch.Fetch(ctx, u)
	if err != nil {
		p.empty++
		return nil, fmt.Errorf("index page %d: %w", p.page, err)
	}

	fresh := unseen(p.seen, p.links(doc))
	if len(fresh) == 0 {
		p.empty++
	} else {
		p.empty = 0
	}
	return fresh, nil
}

// Pages returns how many index pages were requested.
func (p *NumberedPages) Pages() int { return p.page }

func (p *NumberedPages) Close() error { return nil }

// IncrementalLoad opens the index once and keeps triggering the page's
// incremental load, re-scanning the accumulated document each time. It stops
// after StaleLoadLimit consecutive triggers without new links, or after
// MaxLoadAttempts triggers.
type IncrementalLoad struct {
	loader      fetcher.PageLoader
	indexURL    string
	links       LinkExtractor
	maxAttempts int
	staleLimit  int

	session  fetcher.ScrollSession
	seen     map[models.ListingURL]struct{}
	attempts int
	stale    int
	done     bool
}

func NewIncrementalLoad(loader fetcher.PageLoader, indexURL string, links LinkExtractor, limits Limits) *IncrementalLoad {
	limits = limits.withDefaults()
	return &IncrementalLoad{
		loader:      loader,
		indexURL:    indexURL,
		links:       links,
		maxAttempts: limits.MaxLoadAttempts,
		staleLimit:  limits.StaleLoadLimit,
		seen:        make(map[models.ListingURL]struct{}),
	}
}

func (s *IncrementalLoad) NextBatch(ctx context.Context) ([]models.ListingURL, error) {
	if s.done {
		return nil, ErrEndOfStream
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.session == nil {
		sess, err := s.loader.Open(ctx, s.indexURL)
		if err != nil {
			s.done = true
			return nil, fmt.Errorf("open index %s: %w", s.indexURL, err)
		}
		s.session = sess
		return unseen(s.seen, s.links(sess.Document())), nil
	}

	if s.stale >= s.staleLimit || s.attempts >= s.maxAttempts {
		_ = s.Close()
		return nil, ErrEndOfStream
	}

	s.attempts++
	doc, err := s.session.LoadMore(ctx)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load more on %s: %w", s.indexURL, err)
	}

	fresh := unseen(s.seen, s.links(doc))
	if len(fresh) == 0 {
		s.stale++
	} else {
		s.stale = 0
	}
	return fresh, nil
}

// Attempts returns how many load-more triggers were issued.
func (s *IncrementalLoad) Attempts() int { return s.attempts }

func (s *IncrementalLoad) Close() error {
	s.done = true
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

// Union drains its strategies in order and never returns a URL twice.
type Union struct {
	children []Strategy
	idx      int
	seen     map[models.ListingURL]struct{}
}

func NewUnion(children ...Strategy) *Union {
	return &Union{children: children, seen: make(map[models.ListingURL]struct{})}
}

func (u *Union) NextBatch(ctx context.Context) ([]models.ListingURL, error) {
	for u.idx < len(u.children) {
		batch, err := u.children[u.idx].NextBatch(ctx)
		if errors.Is(err, ErrEndOfStream) {
			u.idx++
			continue
		}
		if err != nil {
			return nil, err
		}
		return unseen(u.seen, batch), nil
	}
	return nil, ErrEndOfStream
}

func (u *Union) Close() error {
	var errs []error
	for _, c := range u.children {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewStrategy builds the pagination strategy an adapter asks for. Without a
// page loader, incremental loading falls back to numbered pages.
func NewStrategy(a Adapter, t models.Target, f fetcher.Fetcher, loader fetcher.PageLoader, limits Limits) Strategy {
	numbered := NewNumberedPages(f, func(n int) string { return a.PageURL(t, n) }, a.ListingLinksOnPage, limits)
	if loader == nil {
		return numbered
	}

	switch a.Pagination() {
	case Incremental:
		return NewIncrementalLoad(loader, t.IndexURL, a.ListingLinksOnPage, limits)
	case Both:
		return NewUnion(numbered, NewIncrementalLoad(loader, t.IndexURL, a.ListingLinksOnPage, limits))
	default:
		return numbered
	}
}

// Walked reports how many index pages a strategy requested and how many
// load-more triggers it issued.
func Walked(s Strategy) (pages, loads int) {
	switch s := s.(type) {
	case *NumberedPages:
		return s.Pages(), 0
	case *IncrementalLoad:
		return 0, s.Attempts()
	case *Union:
		for _, c := range s.children {
			p, l := Walked(c)
			pages += p
			loads += l
		}
	}
	return pages, loads
}

// unseen returns the links not yet in seen and records them.
func unseen(seen map[models.ListingURL]struct{}, links []models.ListingURL) []models.ListingURL {
	var out []models.ListingURL
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
