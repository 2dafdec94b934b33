package stage

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/fedresurs"
)

func stageTestEnv(t *testing.T) (*config.Config, *config.Paths, *artifacts.Store, *slog.Logger) {
	t.Helper()
	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return config.Default(), paths, artifacts.NewStore(logger), logger
}

func TestRunMonthLinksGeneratesArtifact(t *testing.T) {
	cfg, paths, store, logger := stageTestEnv(t)

	opts := MonthLinksOptions{Company: "ООО Ромашка", Start: "2023-04", End: "2023-06"}
	require.NoError(t, RunMonthLinks(cfg, paths, store, logger, opts))

	var set fedresurs.MonthLinkSet
	require.NoError(t, store.ReadJSON(paths.MonthLinksFile, &set))
	assert.Equal(t, "ООО Ромашка", set.Company)
	require.Len(t, set.Months, 3)
	assert.Equal(t, "2023-04", set.Months[0].Month)
	assert.Contains(t, set.Months[0].URL, "/encumbrances?group=Leasing")
}

func TestRunMonthLinksReusesExisting(t *testing.T) {
	cfg, paths, store, logger := stageTestEnv(t)

	opts := MonthLinksOptions{Company: "x", Start: "2023-04", End: "2023-05"}
	require.NoError(t, RunMonthLinks(cfg, paths, store, logger, opts))

	first, err := os.Stat(paths.MonthLinksFile)
	require.NoError(t, err)

	// second run with different parameters keeps the cached artifact
	opts2 := MonthLinksOptions{Company: "другая", Start: "2024-01", End: "2024-02"}
	require.NoError(t, RunMonthLinks(cfg, paths, store, logger, opts2))

	second, err := os.Stat(paths.MonthLinksFile)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime(), "artifact must not be rewritten without force")

	var set fedresurs.MonthLinkSet
	require.NoError(t, store.ReadJSON(paths.MonthLinksFile, &set))
	assert.Equal(t, "x", set.Company)
}

func TestRunMonthLinksForceRecreate(t *testing.T) {
	cfg, paths, store, logger := stageTestEnv(t)

	require.NoError(t, RunMonthLinks(cfg, paths, store, logger,
		MonthLinksOptions{Company: "x", Start: "2023-04", End: "2023-05"}))

	require.NoError(t, RunMonthLinks(cfg, paths, store, logger,
		MonthLinksOptions{Company: "y", Start: "2024-01", End: "2024-03", ForceRecreate: true}))

	var set fedresurs.MonthLinkSet
	require.NoError(t, store.ReadJSON(paths.MonthLinksFile, &set))
	assert.Equal(t, "y", set.Company)
	assert.Len(t, set.Months, 3)
}

func TestRunMonthLinksRegeneratesUnreadableArtifact(t *testing.T) {
	cfg, paths, store, logger := stageTestEnv(t)

	require.NoError(t, os.WriteFile(paths.MonthLinksFile, []byte("{broken"), 0644))

	require.NoError(t, RunMonthLinks(cfg, paths, store, logger,
		MonthLinksOptions{Company: "x", Start: "2023-04", End: "2023-04"}))

	var set fedresurs.MonthLinkSet
	require.NoError(t, store.ReadJSON(paths.MonthLinksFile, &set))
	assert.Equal(t, "x", set.Company)
}

func TestRunMonthLinksRejectsBadRange(t *testing.T) {
	cfg, paths, store, logger := stageTestEnv(t)

	err := RunMonthLinks(cfg, paths, store, logger,
		MonthLinksOptions{Company: "x", Start: "2024-05", End: "2024-01"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after end month")
	assert.NoFileExists(t, paths.MonthLinksFile)

	err = RunMonthLinks(cfg, paths, store, logger,
		MonthLinksOptions{Company: "x", Start: "bad", End: "2024-01"})
	assert.Error(t, err)
}
