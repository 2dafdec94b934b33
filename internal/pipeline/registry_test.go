package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStep is a scriptable step used across the pipeline tests.
type fakeStep struct {
	id          string
	deps        []string
	validateErr error
	execErr     error
	executed    *[]string
}

func (s *fakeStep) ID() string             { return s.id }
func (s *fakeStep) Name() string           { return s.id }
func (s *fakeStep) Dependencies() []string { return s.deps }

func (s *fakeStep) Validate(*State) error { return s.validateErr }

func (s *fakeStep) Execute(ctx context.Context, _ *State) error {
	if s.executed != nil {
		*s.executed = append(*s.executed, s.id)
	}
	if s.execErr != nil {
		return s.execErr
	}
	return ctx.Err()
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&fakeStep{id: "a"}))
	assert.Equal(t, 1, r.Count())

	step, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", step.ID())

	assert.Error(t, r.Register(&fakeStep{id: "a"}), "duplicate IDs are rejected")
	assert.Error(t, r.Register(&fakeStep{id: ""}))
	assert.Error(t, r.Register(nil))

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestDependencyOrder(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&fakeStep{id: "fetch", deps: []string{"links"}}))
		require.NoError(t, r.Register(&fakeStep{id: "links"}))
		require.NoError(t, r.Register(&fakeStep{id: "excel", deps: []string{"fetch"}}))

		ordered, err := r.DependencyOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"links", "fetch", "excel"}, stepIDs(ordered))
	})

	t.Run("registration order breaks ties", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&fakeStep{id: "b"}))
		require.NoError(t, r.Register(&fakeStep{id: "a"}))
		require.NoError(t, r.Register(&fakeStep{id: "c"}))

		ordered, err := r.DependencyOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, stepIDs(ordered))
	})

	t.Run("unknown dependency", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&fakeStep{id: "a", deps: []string{"ghost"}}))

		_, err := r.DependencyOrder()
		assert.ErrorContains(t, err, "unknown step")
	})

	t.Run("cycle", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&fakeStep{id: "a", deps: []string{"b"}}))
		require.NoError(t, r.Register(&fakeStep{id: "b", deps: []string{"a"}}))

		_, err := r.DependencyOrder()
		assert.ErrorContains(t, err, "cycle")
	})
}

func stepIDs(steps []Step) []string {
	ids := make([]string, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.ID())
	}
	return ids
}
