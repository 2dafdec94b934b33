// Package stage implements the four pipeline stages behind the stage
// binaries: month-link generation, message-link extraction, raw content
// fetching and spreadsheet compilation.
package stage

import (
	"fmt"
	"log/slog"
	"time"

	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/fedresurs"
)

// MonthLinksOptions configures stage 1.
type MonthLinksOptions struct {
	Company       string
	Start         string // YYYY-MM
	End           string // YYYY-MM
	ForceRecreate bool
}

// RunMonthLinks generates 1month_links.json: one search URL per month in the
// requested range. An existing artifact is reused even when it was built for
// different parameters; staleness is only resolved by an explicit
// force-recreate, so the mismatch is surfaced as a warning.
func RunMonthLinks(cfg *config.Config, paths *config.Paths, store *artifacts.Store, logger *slog.Logger, opts MonthLinksOptions) error {
	start, err := fedresurs.ParseMonth(opts.Start)
	if err != nil {
		return err
	}
	end, err := fedresurs.ParseMonth(opts.End)
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("start month %s is after end month %s", opts.Start, opts.End)
	}

	rebuild, err := store.ShouldRebuild(paths.MonthLinksFile, opts.ForceRecreate)
	if err != nil {
		return err
	}
	if !rebuild {
		var existing fedresurs.MonthLinkSet
		if err := store.ReadJSON(paths.MonthLinksFile, &existing); err == nil {
			if !existing.Matches(opts.Company, opts.Start, opts.End) {
				logger.Warn("cached month links were built for different parameters, reusing anyway",
					slog.String("cached_company", existing.Company),
					slog.String("cached_range", existing.Start+".."+existing.End),
					slog.String("requested_range", opts.Start+".."+opts.End),
					slog.String("hint", "rerun with --force-recreate to regenerate"))
			}
			logger.Info("month links reused",
				slog.Int("months", len(existing.Months)),
				slog.String("path", paths.MonthLinksFile))
			return nil
		}
		// Unreadable artifact: fall through and regenerate.
		logger.Warn("existing month links unreadable, regenerating",
			slog.String("path", paths.MonthLinksFile))
	}

	set := fedresurs.BuildMonthLinks(
		cfg.Scrape.BaseURL, cfg.Scrape.Group, opts.Company,
		start, end, cfg.Scrape.PageLimit, time.Now().UTC())

	if err := store.WriteJSON(paths.MonthLinksFile, &set); err != nil {
		return err
	}

	logger.Info("month links written",
		slog.String("company", opts.Company),
		slog.String("range", opts.Start+".."+opts.End),
		slog.Int("months", len(set.Months)),
		slog.String("path", paths.MonthLinksFile))
	return nil
}
