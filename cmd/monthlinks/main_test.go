package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fedscan/internal/launcher"
)

func TestParseArgsMatchesLauncherPlan(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := launcher.Options{
		Company:       "ООО Лизинговая компания",
		Start:         "2020-01",
		End:           "2020-03",
		ForceRecreate: true,
	}
	plan := launcher.BuildPlan(opts, logger)

	argv := plan.Invocations()[0]
	require.Equal(t, launcher.BinMonthLinks, argv[0])

	args, err := parseArgs(argv[1:])
	require.NoError(t, err)
	assert.Equal(t, opts.Company, args.Company)
	assert.Equal(t, "2020-01", args.Start)
	assert.Equal(t, "2020-03", args.End)
	assert.True(t, args.Force)
}

func TestParseArgsFlagsBeforeCompany(t *testing.T) {
	args, err := parseArgs([]string{"--start", "2021-05", "--end", "2021-07", "Сбербанк Лизинг"})
	require.NoError(t, err)
	assert.Equal(t, "Сбербанк Лизинг", args.Company)
	assert.Equal(t, "2021-05", args.Start)
	assert.Equal(t, "2021-07", args.End)
	assert.False(t, args.Force)
}

func TestParseArgsBlankBoundsStayBlank(t *testing.T) {
	args, err := parseArgs([]string{"Европлан"})
	require.NoError(t, err)
	assert.Equal(t, "Европлан", args.Company)
	assert.Empty(t, args.Start)
	assert.Empty(t, args.End)
}

func TestParseArgsUnknownFlag(t *testing.T) {
	_, err := parseArgs([]string{"Европлан", "--bogus"})
	require.Error(t, err)
}
