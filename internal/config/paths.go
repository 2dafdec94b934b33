package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for every file the pipeline reads or
// writes. All stage binaries resolve the same artifact locations from it, so
// stage N+1 always finds what stage N produced.
type Paths struct {
	BaseDir string
	DataDir string
	LogsDir string

	// Pipeline artifacts, one per stage.
	MonthLinksFile   string
	MessageLinksFile string
	RawContentsDir   string
	OutputFile       string

	// Timestamped copies taken while stage 3 saves incrementally.
	BackupsDir string
}

// GetPaths resolves all paths relative to the executable location, never the
// current working directory. Every binary in the pipeline therefore shares
// one data directory regardless of where it was launched from.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths builds the path set under the given base directory. Tests use this
// directly with a temporary directory.
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	return &Paths{
		BaseDir: baseDir,
		DataDir: dataDir,
		LogsDir: filepath.Join(baseDir, "logs"),

		MonthLinksFile:   filepath.Join(dataDir, "1month_links.json"),
		MessageLinksFile: filepath.Join(dataDir, "2month_links.json"),
		RawContentsDir:   filepath.Join(dataDir, "3raw_contents"),
		OutputFile:       filepath.Join(dataDir, "output.xlsx"),

		BackupsDir: filepath.Join(dataDir, "backups"),
	}
}

// EnsureDirectories creates the base directories every stage expects.
// Stage 3 creates its own per-run backup subdirectories underneath BackupsDir.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawContentsDir,
		p.BackupsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetLogPath returns the path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// RawContentsPath returns the per-year raw content file for stage 3.
func (p *Paths) RawContentsPath(year string) string {
	return filepath.Join(p.RawContentsDir, fmt.Sprintf("raw_contents%s.json", year))
}
