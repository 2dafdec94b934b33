package stage

import (
	"context"
	"log/slog"
	"time"

	"fedscan/internal/apperrors"
	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/fedresurs"
	"fedscan/internal/launcher"
	"fedscan/internal/observability"
)

// MessageLinksOptions configures stage 2.
type MessageLinksOptions struct {
	ForceRecreate bool
	ShowBrowser   bool
}

// RunMessageLinks walks every month search page from 1month_links.json,
// expands all results and writes the discovered message URLs to
// 2month_links.json. With the artifact already present and no force flag,
// the stage is a no-op.
func RunMessageLinks(ctx context.Context, cfg *config.Config, paths *config.Paths, store *artifacts.Store, metrics *observability.Metrics, logger *slog.Logger, opts MessageLinksOptions) error {
	rebuild, err := store.ShouldRebuild(paths.MessageLinksFile, opts.ForceRecreate)
	if err != nil {
		return err
	}
	if !rebuild {
		return nil
	}

	if !store.Exists(paths.MonthLinksFile) {
		return apperrors.InputArtifactMissing(paths.MonthLinksFile, launcher.BinMonthLinks)
	}

	var monthLinks fedresurs.MonthLinkSet
	if err := store.ReadJSON(paths.MonthLinksFile, &monthLinks); err != nil {
		return err
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

	set := fedresurs.MessageLinkSet{
		Company:     monthLinks.Company,
		GeneratedAt: time.Now().UTC(),
	}

	for i, month := range monthLinks.Months {
		logger.Info("collecting message links",
			slog.String("month", month.Month),
			slog.Int("progress", i+1),
			slog.Int("total", len(monthLinks.Months)))

		links, err := browser.CollectMessageLinks(ctx, month.URL)
		if err != nil {
			return err
		}
		metrics.PagesLoaded.Inc()
		metrics.MessagesFound.Add(float64(len(links)))

		set.Months = append(set.Months, fedresurs.MonthMessages{
			Month:        month.Month,
			URL:          month.URL,
			MessageLinks: links,
		})

		if len(links) == 0 {
			logger.Info("no messages in month", slog.String("month", month.Month))
		}
	}

	if err := store.WriteJSON(paths.MessageLinksFile, &set); err != nil {
		return err
	}

	logger.Info("message links written",
		slog.Int("months", len(set.Months)),
		slog.Int("links", set.TotalLinks()),
		slog.String("path", paths.MessageLinksFile))
	return nil
}
