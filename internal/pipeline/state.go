package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the overall status of a pipeline run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// State is the complete state of one pipeline run, shared between the
// manager, the steps and the status endpoint.
type State struct {
	mu sync.RWMutex

	RunID     string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time

	steps map[string]*StepState
	order []string

	err error
}

// NewState creates a pending run state with a fresh run ID.
func NewState() *State {
	return &State{
		RunID:  uuid.NewString(),
		Status: RunStatusPending,
		steps:  make(map[string]*StepState),
	}
}

// AddStep registers a step state in execution order.
func (s *State) AddStep(step *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.steps[step.ID]; !exists {
		s.order = append(s.order, step.ID)
	}
	s.steps[step.ID] = step
}

// Step returns the state for a step ID, or nil when unknown.
func (s *State) Step(id string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps[id]
}

// Start marks the run as running.
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed.
func (s *State) Complete() {
	s.finish(RunStatusCompleted, nil)
}

// Fail marks the run as failed with the given error.
func (s *State) Fail(err error) {
	s.finish(RunStatusFailed, err)
}

// Cancel marks the run as cancelled.
func (s *State) Cancel(err error) {
	s.finish(RunStatusCancelled, err)
}

func (s *State) finish(status RunStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = status
	s.err = err
}

// Err returns the run-level error, if any.
func (s *State) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Snapshot returns a serializable copy of the whole run state.
func (s *State) Snapshot() RunSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := RunSnapshot{
		RunID:     s.RunID,
		Status:    s.Status,
		StartTime: s.StartTime,
	}
	if s.EndTime != nil {
		t := *s.EndTime
		snap.EndTime = &t
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	for _, id := range s.order {
		snap.Steps = append(snap.Steps, s.steps[id].Snapshot())
	}
	return snap
}

// RunSnapshot is the serializable form of a run state, served by the status
// endpoint.
type RunSnapshot struct {
	RunID     string         `json:"run_id"`
	Status    RunStatus      `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Steps     []StepSnapshot `json:"steps"`
	Error     string         `json:"error,omitempty"`
}
