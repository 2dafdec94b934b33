// Package apperrors defines the pipeline's failure taxonomy: user-input
// errors, downstream stage failures and missing-output errors. Everything
// else is wrapped with fmt.Errorf at the call site.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrCompanyRequired is returned when the company name prompt or flag is
// left blank. It is raised before any stage process is started.
var ErrCompanyRequired = errors.New("company name must not be empty")

// ErrInputArtifactMissing is returned when a stage cannot find the artifact
// its predecessor should have produced.
var ErrInputArtifactMissing = errors.New("input artifact missing")

// StageError reports a stage process that exited non-zero. The exit code is
// surfaced verbatim; no retry is attempted.
type StageError struct {
	Stage    string
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stage %s failed with exit code %d: %v", e.Stage, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("stage %s failed with exit code %d", e.Stage, e.ExitCode)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a StageError for the given stage and exit code.
func NewStageError(stage string, exitCode int, err error) *StageError {
	return &StageError{Stage: stage, ExitCode: exitCode, Err: err}
}

// ExitCode extracts the stage exit code from an error chain. It returns 1
// for errors that did not originate from a stage process, so main functions
// can pass the result straight to os.Exit.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) && stageErr.ExitCode != 0 {
		return stageErr.ExitCode
	}
	return 1
}

// MissingOutputError reports an artifact that a stage should have produced
// but did not. Hint carries a human-facing diagnostic.
type MissingOutputError struct {
	Path string
	Hint string
}

func (e *MissingOutputError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("expected output %s not found (%s)", e.Path, e.Hint)
	}
	return fmt.Sprintf("expected output %s not found", e.Path)
}

// NewMissingOutput creates a MissingOutputError.
func NewMissingOutput(path, hint string) *MissingOutputError {
	return &MissingOutputError{Path: path, Hint: hint}
}

// InputArtifactMissing wraps ErrInputArtifactMissing with the artifact path
// and the stage that should have produced it.
func InputArtifactMissing(path, producedBy string) error {
	return fmt.Errorf("%w: %s (run %s first)", ErrInputArtifactMissing, path, producedBy)
}
