package stage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"fedscan/internal/apperrors"
	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/fedresurs"
	"fedscan/internal/launcher"
	"fedscan/internal/observability"
)

// RawContentsOptions configures stage 3.
type RawContentsOptions struct {
	ForceRecreate bool
	ShowBrowser   bool
}

// RunRawContents downloads and parses every message from 2month_links.json
// into per-year files under 3raw_contents/. The store is resumable: URLs
// already present in a year file are skipped, results are flushed every few
// messages with a timestamped backup, and a per-URL failure is recorded in
// the artifact instead of aborting the run.
func RunRawContents(ctx context.Context, cfg *config.Config, paths *config.Paths, store *artifacts.Store, metrics *observability.Metrics, logger *slog.Logger, opts RawContentsOptions) error {
	if !store.Exists(paths.MessageLinksFile) {
		return apperrors.InputArtifactMissing(paths.MessageLinksFile, launcher.BinMessageLinks)
	}

	var links fedresurs.MessageLinkSet
	if err := store.ReadJSON(paths.MessageLinksFile, &links); err != nil {
		return err
	}

	if opts.ForceRecreate {
		logger.Info("force recreate: removing raw content store",
			slog.String("path", paths.RawContentsDir))
		if err := os.RemoveAll(paths.RawContentsDir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", paths.RawContentsDir, err)
		}
	}
	if err := os.MkdirAll(paths.RawContentsDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", paths.RawContentsDir, err)
	}

	byYear := groupLinksByYear(links, logger)
	if len(byYear) == 0 {
		logger.Warn("no message links to fetch",
			slog.String("path", paths.MessageLinksFile))
		return nil
	}

	browser, err := fedresurs.NewBrowser(ctx, fedresurs.BrowserOptions{
		Headless:    !opts.ShowBrowser,
		UserAgent:   cfg.Scrape.UserAgent,
		LoadWait:    cfg.Scrape.LoadMoreWait,
		MaxLoadMore: cfg.Scrape.MaxLoadMore,
		PageTimeout: cfg.Scrape.PageLoadTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer browser.Close()

	// One message fetch per interval.
	limiter := rate.NewLimiter(rate.Every(cfg.Scrape.FetchInterval), 1)

	for _, year := range fedresurs.SortedYears(byYear) {
		if err := fetchYear(ctx, browser, store, metrics, logger, limiter, cfg, paths, year, byYear[year]); err != nil {
			return err
		}
	}

	return nil
}

// groupLinksByYear flattens the message link set per year, logging months
// that produced no links.
func groupLinksByYear(links fedresurs.MessageLinkSet, logger *slog.Logger) map[string][]string {
	byYear := make(map[string][]string)
	for _, month := range links.Months {
		if len(month.MessageLinks) == 0 {
			logger.Warn("month has no message links, skipping",
				slog.String("month", month.Month))
			continue
		}
		year := fedresurs.YearOf(month.Month)
		byYear[year] = append(byYear[year], month.MessageLinks...)
	}
	return byYear
}

// fetchYear processes one year's links into raw_contents<year>.json.
func fetchYear(ctx context.Context, browser *fedresurs.Browser, store *artifacts.Store, metrics *observability.Metrics, logger *slog.Logger, limiter *rate.Limiter, cfg *config.Config, paths *config.Paths, year string, links []string) error {
	outFile := paths.RawContentsPath(year)

	results := make(fedresurs.RawContents)
	if store.Exists(outFile) {
		if err := store.ReadJSON(outFile, &results); err != nil {
			logger.Warn("existing year file unreadable, starting fresh",
				slog.String("path", outFile),
				slog.String("error", err.Error()))
			results = make(fedresurs.RawContents)
		} else if len(results) > 0 {
			logger.Info("resuming year",
				slog.String("year", year),
				slog.Int("already_fetched", len(results)))
		}
	}

	logger.Info("processing year",
		slog.String("year", year),
		slog.Int("links", len(links)))

	newCount := 0
	for i, link := range links {
		if _, done := results[link]; done {
			logger.Debug("already fetched, skipping",
				slog.String("url", link),
				slog.Int("progress", i+1),
				slog.Int("total", len(links)))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		logger.Info("fetching message",
			slog.String("url", link),
			slog.Int("progress", i+1),
			slog.Int("total", len(links)))

		results[link] = fetchMessage(ctx, browser, metrics, logger, link)
		newCount++

		if newCount == 1 || newCount%cfg.Scrape.SaveEvery == 0 {
			if err := saveWithBackup(store, logger, outFile, paths.BackupsDir, results); err != nil {
				return err
			}
			logger.Info("intermediate results saved",
				slog.String("year", year),
				slog.Int("new", newCount))
		}
	}

	if err := saveWithBackup(store, logger, outFile, paths.BackupsDir, results); err != nil {
		return err
	}

	logger.Info("year completed",
		slog.String("year", year),
		slog.Int("new", newCount),
		slog.Int("total", len(results)))
	return nil
}

// fetchMessage loads and parses one message page. Failures become an error
// entry so the URL is not retried on the next run.
func fetchMessage(ctx context.Context, browser *fedresurs.Browser, metrics *observability.Metrics, logger *slog.Logger, link string) fedresurs.MessageContent {
	html, err := browser.FetchMessageHTML(ctx, link)
	if err != nil {
		metrics.ContentErrors.Inc()
		logger.Error("failed to load message page",
			slog.String("url", link),
			slog.String("error", err.Error()))
		return fedresurs.MessageContent{URL: link, Error: err.Error()}
	}
	metrics.PagesLoaded.Inc()

	content, err := fedresurs.ParseMessagePage(link, html)
	if err != nil {
		metrics.ContentErrors.Inc()
		logger.Error("failed to parse message page",
			slog.String("url", link),
			slog.String("error", err.Error()))
		return fedresurs.MessageContent{URL: link, Error: err.Error()}
	}

	metrics.ContentsFetched.Inc()
	return content
}

func saveWithBackup(store *artifacts.Store, logger *slog.Logger, outFile, backupsDir string, results fedresurs.RawContents) error {
	if err := store.WriteJSON(outFile, results); err != nil {
		return err
	}
	if _, err := store.Backup(outFile, backupsDir, time.Now()); err != nil {
		logger.Warn("backup failed", slog.String("error", err.Error()))
	}
	return nil
}
