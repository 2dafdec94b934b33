// Command fedscan is the interactive launcher: it collects run options,
// chains the four stage binaries and reports the outcome, exiting with the
// code of the first stage that failed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fedscan/internal/apperrors"
	"fedscan/internal/config"
	"fedscan/internal/infrastructure"
	"fedscan/internal/launcher"
	"fedscan/internal/observability"
	"fedscan/internal/pipeline"
	"fedscan/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts launcher.Options
	flag.StringVar(&opts.Company, "company", "", "company name to search for")
	flag.StringVar(&opts.Start, "start", "", "first month of the range (YYYY-MM)")
	flag.StringVar(&opts.End, "end", "", "last month of the range (YYYY-MM)")
	flag.BoolVar(&opts.ShowBrowser, "show", false, "show the browser window instead of running headless")
	flag.BoolVar(&opts.ForceRecreate, "force-recreate", false, "discard cached link files and rebuild them")
	flag.BoolVar(&opts.OpenExcel, "open", false, "open the spreadsheet when the run completes")
	flag.BoolVar(&opts.NonInteractive, "yes", false, "accept defaults without prompting")
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
		cfg.Logging.FilePath = paths.GetLogPath("fedscan.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	now := time.Now()
	if !opts.NonInteractive {
		prompter := launcher.NewPrompter(os.Stdin, os.Stdout)
		prompter.Collect(&opts, cfg.Scrape.DefaultStart, now.Format("2006-01"))
	}
	opts.ApplyDefaults(now, cfg.Scrape.DefaultStart)

	if err := opts.Validate(); err != nil {
		if errors.Is(err, apperrors.ErrCompanyRequired) {
			fmt.Fprintln(os.Stderr, "Error: company name is required")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Error("invalid run options", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("pipeline starting",
		slog.String("company", opts.Company),
		slog.String("start", opts.Start),
		slog.String("end", opts.End),
		slog.Bool("force_recreate", opts.ForceRecreate),
		slog.Bool("show_browser", opts.ShowBrowser))

	plan := launcher.BuildPlan(opts, logger)
	registry := pipeline.NewRegistry()
	if err := plan.Register(registry); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for _, argv := range plan.Invocations() {
		fmt.Printf("  %s\n", strings.Join(argv, " "))
	}

	metrics := observability.New()
	manager := pipeline.NewManager(registry, logger, metrics)

	if cfg.Status.Enabled {
		server := transport.NewServer(cfg.Status, manager.State(), metrics, logger)
		server.Start()
		defer server.Shutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := manager.Run(ctx)
	report(manager.State(), runErr)

	if runErr != nil {
		logger.Error("pipeline failed", slog.String("error", runErr.Error()))
		return apperrors.ExitCode(runErr)
	}
	logger.Info("pipeline completed")
	return 0
}

// report prints a one-line outcome per step to the console.
func report(state *pipeline.State, runErr error) {
	snapshot := state.Snapshot()
	fmt.Println()
	for _, step := range snapshot.Steps {
		line := fmt.Sprintf("  %-22s %s", step.Name, step.Status)
		if step.Status == pipeline.StepStatusFailed {
			line += fmt.Sprintf(" (exit code %d)", step.ExitCode)
		}
		if step.StartTime != nil && step.EndTime != nil {
			line += fmt.Sprintf(" [%s]", step.EndTime.Sub(*step.StartTime).Round(time.Millisecond))
		}
		fmt.Println(line)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", runErr)
	}
}
