package launcher

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fedscan/internal/pipeline"
)

func planLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBuildPlanDefaultRun(t *testing.T) {
	plan := BuildPlan(Options{
		Company: "ООО Ромашка",
		Start:   "2023-04",
		End:     "2026-08",
	}, planLogger())

	assert.Equal(t, [][]string{
		{BinMonthLinks, "ООО Ромашка", "--start", "2023-04", "--end", "2026-08"},
		{BinMessageLinks},
		{BinRawContents},
		{BinMakeExcel},
	}, plan.Invocations())
}

func TestBuildPlanAllFlags(t *testing.T) {
	plan := BuildPlan(Options{
		Company:       "x",
		Start:         "2023-04",
		End:           "2023-06",
		ForceRecreate: true,
		ShowBrowser:   true,
		OpenExcel:     true,
	}, planLogger())

	assert.Equal(t, [][]string{
		{BinMonthLinks, "x", "--start", "2023-04", "--end", "2023-06", "--force-recreate"},
		{BinMessageLinks, "--force-recreate", "--show"},
		{BinRawContents, "--force-recreate", "--show"},
		{BinMakeExcel, "--open"},
	}, plan.Invocations())
}

func TestBuildPlanAfterDefaulting(t *testing.T) {
	now := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)

	opts := Options{Company: "ООО Ромашка"}
	opts.ApplyDefaults(now, "")
	require.NoError(t, opts.Validate())

	plan := BuildPlan(opts, planLogger())
	assert.Equal(t,
		[]string{BinMonthLinks, "ООО Ромашка", "--start", "2023-04", "--end", "2026-08"},
		plan.Invocations()[0],
		"defaulted bounds appear on the stage 1 argv")
}

func TestPlanDependencyChain(t *testing.T) {
	plan := BuildPlan(Options{Company: "x", Start: "2023-04", End: "2023-06"}, planLogger())

	require.Len(t, plan.Steps, 4)
	assert.Empty(t, plan.Steps[0].Dependencies())
	assert.Equal(t, []string{StepMonthLinks}, plan.Steps[1].Dependencies())
	assert.Equal(t, []string{StepMessageLinks}, plan.Steps[2].Dependencies())
	assert.Equal(t, []string{StepRawContents}, plan.Steps[3].Dependencies())
}

func TestPlanRegister(t *testing.T) {
	plan := BuildPlan(Options{Company: "x", Start: "2023-04", End: "2023-06"}, planLogger())

	registry := pipeline.NewRegistry()
	require.NoError(t, plan.Register(registry))
	assert.Equal(t, 4, registry.Count())

	ordered, err := registry.DependencyOrder()
	require.NoError(t, err)
	var ids []string
	for _, s := range ordered {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{StepMonthLinks, StepMessageLinks, StepRawContents, StepMakeExcel}, ids)
}
