package fedresurs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Selectors for the portal's incremental loading buttons. The search result
// list and the message page use different markup for the same control.
const (
	loadMoreSearchSelector  = `div.more_btn_wrapper div.more_btn`
	loadMoreMessageSelector = `.more_btn_orange`
)

// BrowserOptions configures a scraping session.
type BrowserOptions struct {
	Headless    bool
	UserAgent   string
	LoadWait    time.Duration // pause after navigation and after each load-more click
	MaxLoadMore int           // click budget per page
	PageTimeout time.Duration // per-page navigation timeout
}

// Browser owns a Chrome instance shared across page visits. All stages that
// talk to the portal reuse one instance per run.
type Browser struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    BrowserOptions
	logger  *slog.Logger
}

// NewBrowser launches Chrome with the session options applied.
func NewBrowser(ctx context.Context, opts BrowserOptions, logger *slog.Logger) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Starting the browser eagerly surfaces a missing Chrome install as an
	// error here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("browser session started", slog.Bool("headless", opts.Headless))

	return &Browser{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		opts:    opts,
		logger:  logger,
	}, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.logger.Info("browser session closed")
}

// navigate opens a URL and waits for the document body, bounded by the
// per-page timeout.
func (b *Browser) navigate(ctx context.Context, pageURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, b.opts.PageTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
	); err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("timed out loading %s after %s: %w", pageURL, b.opts.PageTimeout, err)
		}
		return fmt.Errorf("failed to load %s: %w", pageURL, err)
	}

	return sleepCtx(ctx, b.opts.LoadWait)
}

// loadAll clicks the given load-more control until it disappears or the
// click budget is exhausted. Returns the number of clicks performed.
func (b *Browser) loadAll(ctx context.Context, selector string) (int, error) {
	clicks := 0
	for clicks < b.opts.MaxLoadMore {
		clickCtx, cancel := context.WithTimeout(ctx, b.opts.LoadWait+2*time.Second)
		err := chromedp.Run(clickCtx,
			chromedp.ScrollIntoView(selector, chromedp.ByQuery),
			chromedp.Click(selector, chromedp.ByQuery),
		)
		cancel()
		if err != nil {
			// The button is gone: all results are on the page.
			b.logger.Debug("load-more button no longer present", slog.Int("clicks", clicks))
			return clicks, nil
		}
		clicks++
		b.logger.Debug("clicked load-more", slog.Int("clicks", clicks))
		if err := sleepCtx(ctx, b.opts.LoadWait); err != nil {
			return clicks, err
		}
	}
	b.logger.Warn("load-more click budget exhausted", slog.Int("clicks", clicks))
	return clicks, nil
}

// CollectMessageLinks opens a month search page, expands all results and
// returns the absolute message URLs found, in page order without duplicates.
func (b *Browser) CollectMessageLinks(ctx context.Context, monthURL string) ([]string, error) {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	if err := b.navigate(runCtx, monthURL); err != nil {
		return nil, err
	}
	if _, err := b.loadAll(runCtx, loadMoreSearchSelector); err != nil {
		return nil, err
	}

	js := `Array.from(document.querySelectorAll('a[href]'))
		.map(a => a.href)
		.filter(h => h.includes('/sfactmessage/') || h.includes('/bankruptmessage'))`

	var hrefs []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &hrefs)); err != nil {
		return nil, fmt.Errorf("failed to collect message links: %w", err)
	}

	return dedupe(hrefs), nil
}

// FetchMessageHTML opens a message page, expands its related-message list
// and returns the rendered document HTML.
func (b *Browser) FetchMessageHTML(ctx context.Context, messageURL string) (string, error) {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	if err := b.navigate(runCtx, messageURL); err != nil {
		return "", err
	}
	if _, err := b.loadAll(runCtx, loadMoreMessageSelector); err != nil {
		return "", err
	}

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML(`html`, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture page html: %w", err)
	}
	return html, nil
}

// dedupe removes duplicate URLs preserving first-seen order.
func dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// SortedYears returns the sorted keys of a per-year grouping.
func SortedYears(byYear map[string][]string) []string {
	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
