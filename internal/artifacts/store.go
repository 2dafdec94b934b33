// Package artifacts handles the JSON files the pipeline stages hand to each
// other, including the reuse-or-rebuild gate and stage 3's backup copies.
package artifacts

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store reads and writes pipeline artifacts.
type Store struct {
	logger *slog.Logger
}

// NewStore creates an artifact store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// ShouldRebuild implements the cache gate: an existing artifact is reused by
// default; force removes it (file or directory) and demands a rebuild.
func (s *Store) ShouldRebuild(path string, force bool) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !force {
		s.logger.Info("reusing existing artifact",
			slog.String("path", path),
			slog.Time("modified", info.ModTime()))
		return false, nil
	}

	s.logger.Info("force recreate: removing artifact", slog.String("path", path))
	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return true, nil
}

// WriteJSON marshals v with indentation and writes it via a temp file plus
// rename, so a crash mid-write never leaves a truncated artifact behind.
func (s *Store) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	s.logger.Debug("artifact written",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))
	return nil
}

// ReadJSON unmarshals an artifact into v.
func (s *Store) ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an artifact is present.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListJSONFiles returns the sorted *.json files in a directory. A missing
// directory yields an empty list, not an error.
func (s *Store) ListJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Backup copies an artifact into a timestamped subdirectory of backupsDir.
// Used by stage 3 after each incremental save.
func (s *Store) Backup(path, backupsDir string, now time.Time) (string, error) {
	dir := filepath.Join(backupsDir, now.Format("2006-01-02T15-04-05"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", dir, err)
	}

	dst := filepath.Join(dir, filepath.Base(path))
	if err := copyFile(path, dst); err != nil {
		return "", err
	}

	s.logger.Debug("backup created", slog.String("backup", dst))
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return out.Sync()
}
