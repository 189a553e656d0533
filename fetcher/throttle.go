package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"car-scraper/models"
	"car-scraper/utils"
)

// HostThrottle enforces a minimum interval between requests to the same
// host, shared by every worker in the run.
type HostThrottle struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewHostThrottle(interval time.Duration) *HostThrottle {
	return &HostThrottle{interval: interval, limiters: make(map[string]*rate.Limiter)}
}

// Wait blocks until a request to url's host is allowed or ctx is done.
func (t *HostThrottle) Wait(ctx context.Context, url string) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}
	return t.limiter(utils.Host(url)).Wait(ctx)
}

func (t *HostThrottle) limiter(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	lim, ok := t.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[host] = lim
	}
	return lim
}

type throttled struct {
	next     Fetcher
	throttle *HostThrottle
}

// Throttled wraps next so every fetch first waits on the host throttle.
// Cancellation stops the wait, so no new request starts after ctx is done;
// a request that has started runs to completion on a detached context.
func Throttled(next Fetcher, throttle *HostThrottle) Fetcher {
	return &throttled{next: next, throttle: throttle}
}

func (f *throttled) Fetch(ctx context.Context, url string) (*models.RawDocument, error) {
	if err := f.throttle.Wait(ctx, url); err != nil {
		return nil, err
	}
	return f.next.Fetch(context.WithoutCancel(ctx), url)
}

type throttledLoader struct {
	next     PageLoader
	throttle *HostThrottle
}

// ThrottledLoader applies the host throttle to opening index pages and to
// every load-more trigger of the opened sessions.
func ThrottledLoader(next PageLoader, throttle *HostThrottle) PageLoader {
	return &throttledLoader{next: next, throttle: throttle}
}

func (l *throttledLoader) Open(ctx context.Context, url string) (ScrollSession, error) {
	if err := l.throttle.Wait(ctx, url); err != nil {
		return nil, err
	}
	sess, err := l.next.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return &throttledSession{ScrollSession: sess, url: url, throttle: l.throttle}, nil
}

type throttledSession struct {
	ScrollSession
	url      string
	throttle *HostThrottle
}

func (s *throttledSession) LoadMore(ctx context.Context) (*models.RawDocument, error) {
	if err := s.throttle.Wait(ctx, s.url); err != nil {
		return nil, err
	}
	return s.ScrollSession.LoadMore(ctx)
}
