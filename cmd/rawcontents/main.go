// Command rawcontents is stage 3 of the pipeline: it visits every message
// URL from 2month_links.json, parses the page and accumulates the results
// into per-year JSON files under 3raw_contents/.
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
	force := flag.Bool("force-recreate", false, "discard the 3raw_contents directory and refetch everything")
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
		cfg.Logging.FilePath = paths.GetLogPath("rawcontents.log")
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
	opts := stage.RawContentsOptions{
		ForceRecreate: *force,
		ShowBrowser:   *show,
	}
	if err := stage.RunRawContents(ctx, cfg, paths, store, metrics, logger, opts); err != nil {
		logger.Error("raw content fetching failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
