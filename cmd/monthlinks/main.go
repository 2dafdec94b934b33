// Command monthlinks is stage 1 of the pipeline: it generates one Fedresurs
// search URL per month of the requested range and writes 1month_links.json.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/infrastructure"
	"fedscan/internal/launcher"
	"fedscan/internal/stage"
)

// stageArgs is the parsed command line. Blank bounds are filled from config
// after it is loaded.
type stageArgs struct {
	Company string
	Start   string
	End     string
	Force   bool
}

// parseArgs accepts the company positional before the flags, the order the
// launcher builds, as well as after them. The stdlib flag package stops at
// the first non-flag argument, so a leading positional must be peeled off
// before the FlagSet sees the rest.
func parseArgs(argv []string) (stageArgs, error) {
	var args stageArgs
	if len(argv) > 0 && !strings.HasPrefix(argv[0], "-") {
		args.Company = argv[0]
		argv = argv[1:]
	}

	fs := flag.NewFlagSet(launcher.BinMonthLinks, flag.ContinueOnError)
	start := fs.String("start", "", "first month of the range (YYYY-MM)")
	end := fs.String("end", "", "last month of the range (YYYY-MM)")
	force := fs.Bool("force-recreate", false, "discard an existing 1month_links.json and rebuild it")
	if err := fs.Parse(argv); err != nil {
		return args, err
	}

	if args.Company == "" && fs.NArg() > 0 {
		args.Company = fs.Arg(0)
	}
	args.Start = *start
	args.End = *end
	args.Force = *force
	return args, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		return 2
	}
	if args.Company == "" {
		fmt.Fprintln(os.Stderr, "Error: company name is required")
		fmt.Fprintf(os.Stderr, "Usage: %s \"<company name>\" [--start YYYY-MM] [--end YYYY-MM] [--force-recreate]\n",
			launcher.BinMonthLinks)
		return 1
	}

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
		cfg.Logging.FilePath = paths.GetLogPath("monthlinks.log")
	}

	if args.Start == "" {
		args.Start = cfg.Scrape.DefaultStart
	}
	if args.End == "" {
		args.End = time.Now().Format("2006-01")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	store := artifacts.NewStore(logger)
	opts := stage.MonthLinksOptions{
		Company:       args.Company,
		Start:         args.Start,
		End:           args.End,
		ForceRecreate: args.Force,
	}
	if err := stage.RunMonthLinks(cfg, paths, store, logger, opts); err != nil {
		logger.Error("month-link generation failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
