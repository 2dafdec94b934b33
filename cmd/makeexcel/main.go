// Command makeexcel is stage 4 of the pipeline: it flattens the accumulated
// raw content files into output.xlsx.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/infrastructure"
	"fedscan/internal/stage"
)

func main() {
	os.Exit(run())
}

func run() int {
	open := flag.Bool("open", false, "open the spreadsheet with the OS default handler when done")
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
		cfg.Logging.FilePath = paths.GetLogPath("makeexcel.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	store := artifacts.NewStore(logger)
	if err := stage.RunMakeExcel(cfg, paths, store, logger, stage.MakeExcelOptions{Open: *open}); err != nil {
		logger.Error("spreadsheet compilation failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
