// Package crawler runs adapters against their targets: it discovers
// targets, walks index pages through the adapter's pagination strategy,
// fetches and extracts every unseen listing and hands accepted records to a
// single sink goroutine.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-scraper/fetcher"
	"car-scraper/models"
	"car-scraper/scraper"
	"car-scraper/storage"
	"car-scraper/utils"
)

type Options struct {
	MaxConcurrency int
	Limits         scraper.Limits
	// MinDelay and MaxDelay bound the random pause before each detail
	// fetch within a target.
	MinDelay   time.Duration
	MaxDelay   time.Duration
	SinkBuffer int
	// MaxListings cancels the run once this many records were accepted.
	MaxListings int
}

// Job is one target together with the adapter that produced it.
type Job struct {
	Adapter scraper.Adapter
	Target  models.Target
}

type Crawler struct {
	adapters []scraper.Adapter
	fetch    fetcher.Fetcher
	loader   fetcher.PageLoader
	sink     storage.RecordWriter
	opts     Options
	logger   *utils.Logger
}

// New returns a Crawler. loader may be nil, in which case every source is
// paginated by numbered pages.
func New(adapters []scraper.Adapter, f fetcher.Fetcher, loader fetcher.PageLoader, sink storage.RecordWriter, opts Options, logger *utils.Logger) *Crawler {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.SinkBuffer < 0 {
		opts.SinkBuffer = 0
	}
	return &Crawler{
		adapters: adapters,
		fetch:    f,
		loader:   loader,
		sink:     sink,
		opts:     opts,
		logger:   logger,
	}
}

// Discover asks every adapter for its targets. A failing adapter is
// reported in errs and does not stop the others.
func (c *Crawler) Discover(ctx context.Context) (jobs []Job, errs []error) {
	for _, a := range c.adapters {
		if ctx.Err() != nil {
			break
		}
		targets, err := a.DiscoverTargets(ctx, c.fetch)
		if err != nil {
			errs = append(errs, fmt.Errorf("discover %s/%s: %w", a.Source(), a.ExpectedMake(), err))
			continue
		}
		if len(targets) == 0 {
			errs = append(errs, fmt.Errorf("discover %s/%s: %w", a.Source(), a.ExpectedMake(), ErrNoLinks))
			continue
		}
		c.logger.Info("[crawler] %s/%s: %d targets", a.Source(), a.ExpectedMake(), len(targets))
		for _, t := range targets {
			jobs = append(jobs, Job{Adapter: a, Target: t})
		}
	}
	return jobs, errs
}

// Run crawls every target and returns the run summary. Failures are counted
// per class in the summary; the returned error is only set when the sink
// could not be written.
func (c *Crawler) Run(ctx context.Context) (*Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sum := &Summary{Started: time.Now()}
	state := NewState()

	jobs, errs := c.Discover(ctx)
	for _, err := range errs {
		state.Count(ConfigurationFault)
		state.Warn(err.Error())
		c.logger.Warn("[crawler] %v", err)
	}
	sum.Targets = len(jobs)

	records := make(chan *models.ListingRecord, c.opts.SinkBuffer)
	sinkErr := make(chan error, 1)
	go func() { sinkErr <- c.drain(records) }()

	pool := utils.NewWorkerPool(c.opts.MaxConcurrency)
	for _, job := range jobs {
		job := job
		if !pool.Submit(ctx, func() { c.crawlTarget(ctx, cancel, state, job, records) }) {
			break
		}
	}
	pool.Wait()
	close(records)
	err := <-sinkErr

	sum.Interrupted = ctx.Err() != nil
	state.fill(sum)
	sum.Finished = time.Now()
	c.logger.Info("[crawler] run finished in %s: %d accepted, %d duplicates, %d failures",
		sum.Duration().Round(time.Millisecond), sum.Accepted, sum.Duplicates, sum.Failures())
	return sum, err
}

// drain writes records in arrival order. It keeps draining after a write
// error so workers never block, and returns the first error.
func (c *Crawler) drain(records <-chan *models.ListingRecord) error {
	var first error
	for rec := range records {
		if err := c.sink.Write(rec); err != nil {
			c.logger.Error("[crawler] sink write failed for %s: %v", rec.URL, err)
			if first == nil {
				first = fmt.Errorf("sink: %w", err)
			}
		}
	}
	return first
}

func (c *Crawler) crawlTarget(ctx context.Context, cancel context.CancelFunc, state *State, job Job, records chan<- *models.ListingRecord) {
	strategy := scraper.NewStrategy(job.Adapter, job.Target, c.fetch, c.loader, c.opts.Limits)
	defer func() {
		if err := strategy.Close(); err != nil {
			c.logger.Warn("[crawler] %s: closing pagination: %v", job.Target, err)
		}
	}()

	c.logger.Info("[crawler] %s: crawling %s", job.Target, job.Target.IndexURL)
	links := 0
	for {
		batch, err := strategy.NextBatch(ctx)
		if errors.Is(err, scraper.ErrEndOfStream) || ctx.Err() != nil {
			break
		}
		if err != nil {
			state.Count(Classify(&indexError{err: err}))
			c.logger.Warn("[crawler] %s: %v", job.Target, err)
			continue
		}

		links += len(batch)
		c.logger.Debug("[crawler] %s: %d new links", job.Target, len(batch))
		for _, u := range batch {
			if ctx.Err() != nil {
				return
			}
			c.crawlListing(ctx, cancel, state, job.Adapter, u, records)
		}
	}

	if links == 0 && ctx.Err() == nil {
		state.Count(ConfigurationFault)
		msg := fmt.Sprintf("%s: %v (%s)", job.Target, ErrNoLinks, job.Target.IndexURL)
		state.Warn(msg)
		c.logger.Warn("[crawler] %s", msg)
		return
	}
	pages, loads := scraper.Walked(strategy)
	c.logger.Info("[crawler] %s: done, %d links from %d pages and %d loads", job.Target, links, pages, loads)
}

func (c *Crawler) crawlListing(ctx context.Context, cancel context.CancelFunc, state *State, a scraper.Adapter, u models.ListingURL, records chan<- *models.ListingRecord) {
	if !state.MarkSeen(u) {
		return
	}
	if err := utils.SleepJitter(ctx, c.opts.MinDelay, c.opts.MaxDelay); err != nil {
		return
	}

	doc, err := c.fetch.Fetch(ctx, u.String())
	if err != nil {
		if isCancellation(err) || ctx.Err() != nil {
			return
		}
		state.Count(Classify(err))
		c.logger.Debug("[crawler] %s: %v", u, err)
		return
	}

	rec, err := a.ExtractListing(doc, u)
	if err != nil {
		state.Count(Classify(err))
		c.logger.Debug("[crawler] %s: %v", u, err)
		return
	}
	if !scraper.SameMake(a.ExpectedMake(), rec.Make) {
		state.Count(Classify(ErrMakeMismatch))
		c.logger.Debug("[crawler] %s: make %q, want %q", u, rec.Make, a.ExpectedMake())
		return
	}

	n, ok := state.Reserve(c.opts.MaxListings)
	if !ok {
		return
	}
	records <- rec
	if c.opts.MaxListings > 0 && n >= c.opts.MaxListings {
		c.logger.Info("[crawler] reached %d listings, stopping", n)
		cancel()
	}
}
