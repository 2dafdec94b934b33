package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fedscan/internal/apperrors"
	"fedscan/internal/config"
	"fedscan/internal/infrastructure"
	"fedscan/internal/observability"
)

func newTestManager(t *testing.T, steps ...Step) *Manager {
	t.Helper()
	r := NewRegistry()
	for _, s := range steps {
		require.NoError(t, r.Register(s))
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewManager(r, logger, observability.New())
}

func TestManagerRunsStepsInOrder(t *testing.T) {
	var executed []string
	m := newTestManager(t,
		&fakeStep{id: "fetch", deps: []string{"links"}, executed: &executed},
		&fakeStep{id: "links", executed: &executed},
	)

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, []string{"links", "fetch"}, executed)

	snapshot := m.State().Snapshot()
	assert.Equal(t, RunStatusCompleted, snapshot.Status)
	for _, step := range snapshot.Steps {
		assert.Equal(t, StepStatusCompleted, step.Status)
	}
}

func TestManagerFailureSkipsRemaining(t *testing.T) {
	var executed []string
	stageErr := apperrors.NewStageError("links", 3, errors.New("exit status 3"))
	m := newTestManager(t,
		&fakeStep{id: "links", execErr: stageErr, executed: &executed},
		&fakeStep{id: "fetch", deps: []string{"links"}, executed: &executed},
		&fakeStep{id: "excel", deps: []string{"fetch"}, executed: &executed},
	)

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, apperrors.ExitCode(err), "the stage exit code travels with the error")
	assert.Equal(t, []string{"links"}, executed, "no step runs after a failure")

	snapshot := m.State().Snapshot()
	assert.Equal(t, RunStatusFailed, snapshot.Status)
	assert.Equal(t, StepStatusFailed, snapshot.Steps[0].Status)
	assert.Equal(t, 3, snapshot.Steps[0].ExitCode)
	assert.Equal(t, StepStatusSkipped, snapshot.Steps[1].Status)
	assert.Equal(t, StepStatusSkipped, snapshot.Steps[2].Status)
}

func TestManagerValidationFailureStopsRun(t *testing.T) {
	var executed []string
	m := newTestManager(t,
		&fakeStep{id: "links", validateErr: errors.New("binary not found"), executed: &executed},
		&fakeStep{id: "fetch", deps: []string{"links"}, executed: &executed},
	)

	err := m.Run(context.Background())
	require.ErrorContains(t, err, "validation failed")
	assert.Empty(t, executed)

	snapshot := m.State().Snapshot()
	assert.Equal(t, StepStatusFailed, snapshot.Steps[0].Status)
	assert.Equal(t, StepStatusSkipped, snapshot.Steps[1].Status)
}

func TestManagerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed []string
	m := newTestManager(t,
		&fakeStep{id: "links", executed: &executed},
		&fakeStep{id: "fetch", deps: []string{"links"}, executed: &executed},
	)

	err := m.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, executed)
	assert.Equal(t, RunStatusCancelled, m.State().Snapshot().Status)
}

func TestManagerTagsLogsWithRunID(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.Register(&fakeStep{id: "links"}))
	m := NewManager(r, logger, nil)
	require.NoError(t, m.Run(context.Background()))
	require.NoError(t, infrastructure.CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"`+m.State().RunID+`"`)
	assert.Contains(t, string(data), "pipeline run completed")
}

func TestManagerNilMetrics(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeStep{id: "links"}))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	m := NewManager(r, logger, nil)
	assert.NoError(t, m.Run(context.Background()))
}
