package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageError(t *testing.T) {
	cause := errors.New("exit status 3")
	err := NewStageError("raw-contents", 3, cause)

	assert.Equal(t, "stage raw-contents failed with exit code 3: exit status 3", err.Error())
	assert.ErrorIs(t, err, cause)

	var stageErr *StageError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &stageErr)
	assert.Equal(t, 3, stageErr.ExitCode)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "stage error", err: NewStageError("s", 7, nil), want: 7},
		{name: "wrapped stage error", err: fmt.Errorf("run failed: %w", NewStageError("s", 2, nil)), want: 2},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "stage error with zero code", err: NewStageError("s", 0, errors.New("x")), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestMissingOutputError(t *testing.T) {
	err := NewMissingOutput("data/output.xlsx", "check the stage logs")
	assert.Equal(t, "expected output data/output.xlsx not found (check the stage logs)", err.Error())

	bare := NewMissingOutput("data/output.xlsx", "")
	assert.Equal(t, "expected output data/output.xlsx not found", bare.Error())
}

func TestInputArtifactMissing(t *testing.T) {
	err := InputArtifactMissing("data/1month_links.json", "monthlinks")
	assert.ErrorIs(t, err, ErrInputArtifactMissing)
	assert.Contains(t, err.Error(), "data/1month_links.json")
	assert.Contains(t, err.Error(), "run monthlinks first")
}
