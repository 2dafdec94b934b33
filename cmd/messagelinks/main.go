// Command messagelinks is stage 2 of the pipeline: it opens every month
// search page from 1month_links.json in a browser, expands all results and
// writes the discovered message URLs to 2month_links.json.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/infrastructure"
	"fedscan/internal/observability"
	"fedscan/internal/stage"
)

func main() {
	os.Exit(run())
}

func run() int {
	force := flag.Bool("force-recreate", false, "discard an existing 2month_links.json and rebuild it")
	show := flag.Bool("show", false, "show the browser window instead of running headless")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve paths: %v\n", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create directories: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath("messagelinks.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := artifacts.NewStore(logger)
	metrics := observability.New()
	opts := stage.MessageLinksOptions{
		ForceRecreate: *force,
		ShowBrowser:   *show,
	}
	if err := stage.RunMessageLinks(ctx, cfg, paths, store, metrics, logger, opts); err != nil {
		logger.Error("message-link extraction failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
