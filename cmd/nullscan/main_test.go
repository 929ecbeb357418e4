package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/database/sqlite/sqlitetest"
	"github.com/koustreak/nullscan/internal/report"
)

// execute runs the root command. Commands are package globals, so flags
// set by one call stay set for the next.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "disabled"))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func clearConnectionEnv(t *testing.T) {
	for _, k := range []string{"DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_SERVICE", "DB_SSLMODE"} {
		t.Setenv(k, "")
	}
	t.Setenv("DB_DRIVER", "oracle")
}

func TestAnalysisFlags_OverrideOnlyChanged(t *testing.T) {
	var f analysisFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{"--table", "CORPORATION", "--random-sampling=false", "--row-limit", "5"}))

	a := config.DefaultAnalysis()
	a.Schema = "COLIN_MGR_DEV"
	f.apply(fs, &a)

	assert.Equal(t, "CORPORATION", a.Table)
	assert.False(t, a.RandomSampling)
	assert.Equal(t, 5, a.RowLimit)
	assert.Equal(t, "COLIN_MGR_DEV", a.Schema, "unset flag must not clobber the file value")
	assert.True(t, a.NonDirectMode)
}

func TestQueryCommand(t *testing.T) {
	clearConnectionEnv(t)

	out := execute(t, "query", "--driver", "postgres", "--schema", "public", "--row-limit", "500")

	assert.Contains(t, out, "-- count (postgres)")
	assert.Contains(t, out, "FROM public.CORP_PARTY t")
	assert.Contains(t, out, "WHERE f.FILING_TYP_CD = $1")
	assert.Contains(t, out, "-- $1 = NOCDR")
	assert.Contains(t, out, "ORDER BY RANDOM()\nLIMIT 500;")
}

func TestRunCommand_RejectsOversizedNonDirectLimit(t *testing.T) {
	clearConnectionEnv(t)

	out := execute(t, "run")

	assert.NotContains(t, out, "Creating db connection")
	assert.True(t, strings.HasPrefix(out, "Failed to complete analysis: "), out)
	assert.Contains(t, out, "1000")
}

func TestRunCommand_MissingEnvironment(t *testing.T) {
	clearConnectionEnv(t)

	out := execute(t, "run", "--non-direct-mode=false")

	assert.Contains(t, out, "Creating db connection\n")
	assert.Contains(t, out, "Failed to complete analysis: ")
	assert.Contains(t, out, "DB_USER")
	assert.NotContains(t, out, "db connected")
}

func TestRunCommand_SQLite(t *testing.T) {
	path := sqlitetest.Path(t,
		`CREATE TABLE corp_party (corp_party_id INTEGER, mailing_addr_id INTEGER, middle_nme TEXT)`,
		`INSERT INTO corp_party VALUES (1, 10, NULL), (2, NULL, NULL), (3, 30, 'J'), (4, 40, NULL)`,
	)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_USER", "unused")
	t.Setenv("DB_PASS", "unused")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "0")
	t.Setenv("DB_SERVICE", path)

	out := execute(t, "run",
		"--schema", "main",
		"--table", "corp_party",
		"--event-id-column", "",
		"--filing-type", "",
		"--non-direct-mode=false",
	)

	assert.NotContains(t, out, "Failed to complete analysis")
	assert.Contains(t, out, "Creating db connection\ndb connected\n"+report.Divider)
	assert.Contains(t, out, "Total rows matching filter: 4")
	assert.Contains(t, out, "Analysis Results:")
	assert.Contains(t, out, report.HeaderPercentage)
	assert.Contains(t, out, "MAILING_ADDR_ID")
	assert.Contains(t, out, "75.00%")
	assert.Contains(t, out, "25.00%")
}
