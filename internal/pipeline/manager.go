package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fedscan/internal/apperrors"
	"fedscan/internal/infrastructure"
	"fedscan/internal/observability"
)

// Manager executes registered steps strictly sequentially in dependency
// order. A step failure is terminal: remaining steps are marked skipped and
// the run fails. There are no retries anywhere in the pipeline.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
	state    *State
}

// NewManager creates a manager for the given registry.
func NewManager(registry *Registry, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		state:    NewState(),
	}
}

// State returns the run state, readable while the run is in progress.
func (m *Manager) State() *State {
	return m.state
}

// Run executes all steps. It returns the first step error, already wrapped
// with the stage's exit code where one exists.
func (m *Manager) Run(ctx context.Context) error {
	ordered, err := m.registry.DependencyOrder()
	if err != nil {
		m.state.Fail(err)
		return fmt.Errorf("failed to order steps: %w", err)
	}

	for _, step := range ordered {
		m.state.AddStep(NewStepState(step.ID(), step.Name()))
	}

	m.state.Start()
	ctx = infrastructure.WithRunID(ctx, m.state.RunID)
	m.logger.InfoContext(ctx, "pipeline run starting", slog.Int("steps", len(ordered)))

	for i, step := range ordered {
		stepState := m.state.Step(step.ID())

		if err := ctx.Err(); err != nil {
			stepState.Skip("run cancelled")
			m.skipRemaining(ctx, ordered[i+1:], "run cancelled")
			m.state.Cancel(err)
			return err
		}

		if err := step.Validate(m.state); err != nil {
			err = fmt.Errorf("step %s validation failed: %w", step.ID(), err)
			stepState.Fail(err, 0)
			m.observeStep(stepState)
			m.skipRemaining(ctx, ordered[i+1:], "earlier step failed")
			m.state.Fail(err)
			return err
		}

		stepState.Start()
		m.logger.InfoContext(ctx, "step starting",
			slog.String("step", step.ID()),
			slog.String("name", step.Name()))

		if err := step.Execute(ctx, m.state); err != nil {
			if errors.Is(err, context.Canceled) {
				stepState.Fail(err, 0)
				m.skipRemaining(ctx, ordered[i+1:], "run cancelled")
				m.state.Cancel(err)
				return err
			}

			stepState.Fail(err, apperrors.ExitCode(err))
			m.observeStep(stepState)
			m.logger.ErrorContext(ctx, "step failed",
				slog.String("step", step.ID()),
				slog.Int("exit_code", stepState.ExitCode),
				slog.String("error", err.Error()))
			m.skipRemaining(ctx, ordered[i+1:], "earlier step failed")
			m.state.Fail(err)
			return err
		}

		stepState.Complete()
		m.observeStep(stepState)
		m.logger.InfoContext(ctx, "step completed",
			slog.String("step", step.ID()),
			slog.Duration("duration", stepState.Duration()))
	}

	m.state.Complete()
	m.logger.InfoContext(ctx, "pipeline run completed")
	return nil
}

func (m *Manager) skipRemaining(ctx context.Context, steps []Step, reason string) {
	for _, step := range steps {
		if stepState := m.state.Step(step.ID()); stepState != nil {
			stepState.Skip(reason)
			m.logger.InfoContext(ctx, "step skipped",
				slog.String("step", step.ID()),
				slog.String("reason", reason))
		}
	}
}

func (m *Manager) observeStep(stepState *StepState) {
	if m.metrics == nil {
		return
	}
	m.metrics.StepsTotal.WithLabelValues(stepState.ID, string(stepState.Status)).Inc()
	m.metrics.StepDuration.WithLabelValues(stepState.ID).Observe(stepState.Duration().Seconds())
}
