package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"car-scraper/models"
	"car-scraper/utils"
)

const responseKey = "response"

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	// UserAgent is sent on every request. When empty a random browser
	// user agent is chosen per request.
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

// HTTPFetcher fetches pages synchronously with a shared colly collector.
// Each call carries its own colly.Context so concurrent calls never see each
// other's responses.
type HTTPFetcher struct {
	collector *colly.Collector
	logger    *utils.Logger
}

// NewHTTPFetcher builds a fetcher. The collector revisits URLs freely;
// dedup is the crawler's job.
func NewHTTPFetcher(opts HTTPOptions, logger *utils.Logger) *HTTPFetcher {
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = !opts.RespectRobots
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		c.UserAgent = opts.UserAgent
	} else {
		extensions.RandomUserAgent(c)
	}
	extensions.Referer(c)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "vi-VN,vi;q=0.9,en;q=0.8")
	})
	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(responseKey, r)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Ctx != nil {
			r.Ctx.Put(responseKey, r)
		}
	})

	return &HTTPFetcher{collector: c, logger: logger}
}

// Fetch performs one GET. Non-2xx responses return both the document and a
// *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*models.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqCtx := colly.NewContext()
	err := f.collector.Request(http.MethodGet, url, nil, reqCtx, nil)
	if errors.Is(err, colly.ErrRobotsTxtBlocked) {
		return nil, fmt.Errorf("fetch %s: %w", url, ErrDisallowed)
	}

	resp, _ := reqCtx.GetAny(responseKey).(*colly.Response)
	if resp == nil || resp.StatusCode == 0 {
		if err == nil {
			err = errors.New("no response")
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	doc := &models.RawDocument{
		URL:        url,
		FinalURL:   url,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		FetchedAt:  time.Now(),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		doc.FinalURL = resp.Request.URL.String()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Debug("[fetch] %s -> HTTP %d", url, resp.StatusCode)
		return doc, &StatusError{URL: url, Code: resp.StatusCode}
	}
	if err != nil {
		return doc, fmt.Errorf("fetch %s: %w", url, err)
	}
	return doc, nil
}
