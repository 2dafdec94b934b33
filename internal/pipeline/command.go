package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"fedscan/internal/apperrors"
)

// CommandStep runs a stage binary as a child process. The child's stdout and
// stderr stream through to the launcher's, and its exit code is surfaced
// verbatim in the resulting error.
type CommandStep struct {
	id     string
	name   string
	deps   []string
	binary string
	args   []string
	logger *slog.Logger

	// Stdout/Stderr default to the launcher's own streams.
	Stdout io.Writer
	Stderr io.Writer

	// lookup resolves the binary path; replaced in tests.
	lookup func(string) (string, error)
}

// NewCommandStep creates a step that invokes binary with args.
func NewCommandStep(id, name string, deps []string, binary string, args []string, logger *slog.Logger) *CommandStep {
	return &CommandStep{
		id:     id,
		name:   name,
		deps:   deps,
		binary: binary,
		args:   args,
		logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		lookup: resolveBinary,
	}
}

func (s *CommandStep) ID() string             { return s.id }
func (s *CommandStep) Name() string           { return s.name }
func (s *CommandStep) Dependencies() []string { return s.deps }

// Binary returns the stage binary name.
func (s *CommandStep) Binary() string { return s.binary }

// Args returns the argument list the step will pass to the binary.
func (s *CommandStep) Args() []string { return s.args }

// Validate checks that the stage binary can be found.
func (s *CommandStep) Validate(*State) error {
	if _, err := s.lookup(s.binary); err != nil {
		return fmt.Errorf("stage binary %s not found: %w", s.binary, err)
	}
	return nil
}

// Execute runs the stage process and blocks until it exits.
func (s *CommandStep) Execute(ctx context.Context, _ *State) error {
	path, err := s.lookup(s.binary)
	if err != nil {
		return fmt.Errorf("stage binary %s not found: %w", s.binary, err)
	}

	s.logger.Info("invoking stage",
		slog.String("step", s.id),
		slog.String("binary", path),
		slog.Any("args", s.args))

	cmd := exec.CommandContext(ctx, path, s.args...)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return apperrors.NewStageError(s.id, exitErr.ExitCode(), err)
		}
		return fmt.Errorf("failed to run stage %s: %w", s.id, err)
	}

	return nil
}

// resolveBinary prefers a sibling of the launcher's own executable, so a
// deployed directory of binaries works without PATH setup, then falls back
// to PATH lookup.
func resolveBinary(name string) (string, error) {
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), name)
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	return exec.LookPath(name)
}
