package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"car-scraper/models"
	"car-scraper/utils"
)

// loadMoreScript scrolls to the bottom and clicks a visible "load more"
// control when the page has one. It reports whether it clicked.
const loadMoreScript = `(() => {
	window.scrollTo(0, document.body.scrollHeight);
	const labels = ['xem thêm', 'tải thêm', 'load more'];
	const els = Array.from(document.querySelectorAll('button, a'));
	for (const el of els) {
		const t = (el.innerText || '').trim().toLowerCase();
		if (t && labels.some(l => t.includes(l)) && el.offsetParent !== null) {
			el.click();
			return true;
		}
	}
	return false;
})()`

const snapshotScript = `document.documentElement.outerHTML`

// BrowserOptions configures a ChromeLoader.
type BrowserOptions struct {
	ChromeBin       string
	UserAgent       string
	NavigateTimeout time.Duration
	SettleDelay     time.Duration
	ScrollPause     time.Duration
	OpenAttempts    int
}

// ChromeLoader opens index pages in tabs of one shared headless Chrome.
type ChromeLoader struct {
	opts   BrowserOptions
	logger *utils.Logger
	retry  *utils.RetryConfig

	once       sync.Once
	startErr   error
	browserCtx context.Context
	cancel     func()
}

func NewChromeLoader(opts BrowserOptions, logger *utils.Logger) *ChromeLoader {
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 60 * time.Second
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 3 * time.Second
	}
	if opts.ScrollPause <= 0 {
		opts.ScrollPause = 2 * time.Second
	}
	return &ChromeLoader{
		opts:   opts,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.OpenAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// start launches the browser on first use.
func (l *ChromeLoader) start() error {
	l.once.Do(func() {
		chromeBin := l.opts.ChromeBin
		if chromeBin == "" {
			chromeBin = findChromeBinary()
		}
		l.logger.Info("[browser] Using browser binary: %s", chromeBin)

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
		if l.opts.UserAgent != "" {
			opts = append(opts, chromedp.UserAgent(l.opts.UserAgent))
		}
		if chromeBin != "" {
			opts = append(opts, chromedp.ExecPath(chromeBin))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

		// The first Run allocates the browser; it must not carry a timeout.
		if err := chromedp.Run(browserCtx); err != nil {
			cancelBrowser()
			cancelAlloc()
			l.startErr = fmt.Errorf("browser: start: %w", err)
			return
		}
		l.browserCtx = browserCtx
		l.cancel = func() {
			cancelBrowser()
			cancelAlloc()
		}
	})
	return l.startErr
}

// Open navigates a new tab to url and returns the session. The initial load
// is retried with exponential back-off.
func (l *ChromeLoader) Open(ctx context.Context, url string) (ScrollSession, error) {
	if err := l.start(); err != nil {
		return nil, err
	}

	var sess *chromeSession
	err := l.retry.Do(ctx, "open "+url, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tabCtx, cancelTab := chromedp.NewContext(l.browserCtx)
		if err := chromedp.Run(tabCtx); err != nil {
			cancelTab()
			return err
		}

		s := &chromeSession{loader: l, ctx: tabCtx, cancel: cancelTab, url: url}
		runCtx, cancelTimeout := context.WithTimeout(tabCtx, l.opts.NavigateTimeout)
		defer cancelTimeout()

		if err := chromedp.Run(runCtx,
			chromedp.Navigate(url),
			chromedp.Sleep(l.opts.SettleDelay),
		); err != nil {
			cancelTab()
			return err
		}
		if err := s.snapshot(runCtx); err != nil {
			cancelTab()
			return err
		}
		sess = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Close shuts the browser down.
func (l *ChromeLoader) Close() error {
	if l.cancel != nil {
		l.cancel()
	}
	return nil
}

type chromeSession struct {
	loader *ChromeLoader
	ctx    context.Context
	cancel context.CancelFunc
	url    string
	doc    *models.RawDocument
}

func (s *chromeSession) Document() *models.RawDocument {
	return s.doc
}

// LoadMore scrolls or clicks the page's load-more control, waits for new
// content, and returns the accumulated document.
func (s *chromeSession) LoadMore(ctx context.Context) (*models.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, s.loader.opts.NavigateTimeout)
	defer cancel()

	var clicked bool
	if err := chromedp.Run(runCtx,
		chromedp.Evaluate(loadMoreScript, &clicked),
		chromedp.Sleep(s.loader.opts.ScrollPause),
	); err != nil {
		return nil, fmt.Errorf("browser: load more %s: %w", s.url, err)
	}
	if err := s.snapshot(runCtx); err != nil {
		return nil, err
	}
	s.loader.logger.Debug("[browser] load more on %s (clicked=%v, %d bytes)", s.url, clicked, len(s.doc.Body))
	return s.doc, nil
}

func (s *chromeSession) snapshot(ctx context.Context) error {
	var html, location string
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(snapshotScript, &html),
		chromedp.Location(&location),
	); err != nil {
		return fmt.Errorf("browser: snapshot %s: %w", s.url, err)
	}
	s.doc = &models.RawDocument{
		URL:        s.url,
		FinalURL:   location,
		StatusCode: http.StatusOK,
		Body:       []byte(html),
		FetchedAt:  time.Now(),
	}
	return nil
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
