package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/oracle"
	"github.com/koustreak/nullscan/internal/database/sqlite"
	"github.com/koustreak/nullscan/internal/database/sqlite/sqlitetest"
	"github.com/koustreak/nullscan/internal/errs"
	"github.com/koustreak/nullscan/internal/logger"
	"github.com/koustreak/nullscan/internal/report"
)

var registryFixture = []string{
	`CREATE TABLE event (event_id INTEGER PRIMARY KEY)`,
	`CREATE TABLE filing (event_id INTEGER, filing_typ_cd TEXT)`,
	`CREATE TABLE corp_party (corp_party_id INTEGER, start_event_id INTEGER, mailing_addr_id INTEGER, middle_nme TEXT)`,
	`CREATE TABLE address (addr_id INTEGER, city TEXT, postal_cd TEXT)`,
	`INSERT INTO event VALUES (1), (2), (3), (4)`,
	`INSERT INTO filing VALUES (1, 'NOCDR'), (2, 'NOCDR'), (3, 'OTHER'), (4, 'NOCDR')`,
	`INSERT INTO corp_party VALUES
		(1, 1, 100, 'A'),
		(2, 1, 100, NULL),
		(3, 2, 200, NULL),
		(4, 2, NULL, NULL),
		(5, 3, 300, 'B'),
		(6, 4, 400, NULL)`,
	`INSERT INTO address VALUES
		(100, 'Victoria', 'V8W'),
		(200, 'Nanaimo', NULL),
		(300, 'Kelowna', 'V1Y'),
		(400, NULL, NULL)`,
}

func registryAnalysis() config.Analysis {
	a := config.DefaultAnalysis()
	a.Schema = "main"
	a.Table = "corp_party"
	a.EventIDColumn = "start_event_id"
	a.RowLimit = 100
	a.ConnectedTableName = "address"
	a.ColumnNameConnected = "addr_id"
	return a
}

// cappedDialect is SQLite with an IN-list cap, to exercise the limits.
type cappedDialect struct {
	sqlite.Dialect
	max int
}

func (d cappedDialect) MaxInListSize() int { return d.max }

func TestRun_DirectMode(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.NonDirectMode = false

	rep, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Stages, 1)
	s := rep.Stages[0]
	assert.Equal(t, report.StageSample, s.Name)
	assert.Equal(t, report.ModeRandom, s.Mode)
	assert.Equal(t, int64(5), s.TotalRows)
	assert.Equal(t, 5, s.SampleRows)
	assert.Equal(t, 100.0, s.Coverage)

	byName := map[string]string{}
	for _, e := range s.Entries {
		byName[e.Column] = e.PercentageString()
	}
	assert.Equal(t, map[string]string{
		"CORP_PARTY_ID":   "100.00%",
		"START_EVENT_ID":  "100.00%",
		"MAILING_ADDR_ID": "80.00%",
		"MIDDLE_NME":      "20.00%",
	}, byName)
	assert.False(t, rep.FinishedAt.IsZero())
}

func TestRun_RandomSampleTruncates(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.NonDirectMode = false
	cfg.RowLimit = 2

	rep, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())
	require.NoError(t, err)

	s := rep.Final()
	assert.Equal(t, int64(5), s.TotalRows)
	assert.Equal(t, 2, s.SampleRows)
	assert.InDelta(t, 40.0, s.Coverage, 1e-9)
}

func TestRun_FullRangeIgnoresLimit(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.NonDirectMode = false
	cfg.RandomSampling = false
	cfg.RowLimit = 1

	rep, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())
	require.NoError(t, err)

	s := rep.Final()
	assert.Equal(t, report.ModeFull, s.Mode)
	assert.Equal(t, 5, s.SampleRows)
	assert.Zero(t, s.Coverage)
}

func TestRun_Unfiltered(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.NonDirectMode = false
	cfg.EventIDColumn = ""
	cfg.FilingType = ""

	rep, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(6), rep.Final().TotalRows)
}

func TestRun_NonDirectMode(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.SortByCount = true

	rep, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Stages, 2)
	s := rep.Final()
	assert.Equal(t, report.StageConnected, s.Name)
	assert.Equal(t, "address", s.Table)
	assert.Equal(t, 3, s.FilterValues)
	assert.Equal(t, 3, s.SampleRows)
	require.NotNil(t, s.Link)
	assert.Equal(t, "MAILING_ADDR_ID", s.Link.FromColumn)

	require.Len(t, s.Entries, 3)
	assert.Equal(t, "ADDR_ID", s.Entries[0].Column)
	assert.Equal(t, "100.00%", s.Entries[0].PercentageString())
	assert.Equal(t, "CITY", s.Entries[1].Column)
	assert.Equal(t, "66.67%", s.Entries[1].PercentageString())
	assert.Equal(t, "POSTAL_CD", s.Entries[2].Column)
	assert.Equal(t, "33.33%", s.Entries[2].PercentageString())
}

func TestRun_NonDirectFilterTooLarge(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.RowLimit = 2

	// The row limit passes preflight but three distinct link values do not
	// fit once full range mode ignores it.
	cfg.RandomSampling = false

	rep, err := New(db, cappedDialect{max: 2}, cfg, WithLogger(logger.Nop())).Run(context.Background())

	assert.True(t, errs.IsFilterTooLarge(err), "got %v", err)
	assert.Len(t, rep.Stages, 1)
}

func TestRun_EmptySample(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.FilingType = "NOPE"

	_, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())

	assert.True(t, errs.IsEmptySample(err), "got %v", err)
}

func TestRun_MissingLinkColumn(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.ColumnNameMain = "DELIVERY_ADDR_ID"

	_, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())

	assert.True(t, errs.IsInvalidInput(err), "got %v", err)
}

func TestRun_MissingTable(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)
	cfg := registryAnalysis()
	cfg.Table = "corporation"

	_, err := New(db, sqlite.Dialect{}, cfg, WithLogger(logger.Nop())).Run(context.Background())

	assert.True(t, errs.IsQueryFailed(err), "got %v", err)
}

func TestRun_QueryTimeout(t *testing.T) {
	db := sqlitetest.Open(t, registryFixture...)

	a := New(db, sqlite.Dialect{}, registryAnalysis(),
		WithLogger(logger.Nop()),
		WithQueryTimeout(time.Nanosecond),
	)
	_, err := a.Run(context.Background())

	assert.True(t, errs.IsTimeout(err), "got %v", err)
}

func TestPreflight(t *testing.T) {
	cfg := config.DefaultAnalysis()

	err := Preflight(cfg, oracle.Dialect{})
	assert.True(t, errs.IsFilterTooLarge(err), "default row limit exceeds the Oracle cap")

	cfg.RowLimit = 1000
	assert.NoError(t, Preflight(cfg, oracle.Dialect{}))

	cfg.RowLimit = 10000
	cfg.NonDirectMode = false
	assert.NoError(t, Preflight(cfg, oracle.Dialect{}))

	cfg.NonDirectMode = true
	cfg.RandomSampling = false
	assert.True(t, errs.IsFilterTooLarge(Preflight(cfg, oracle.Dialect{})), "full range mode is checked too")

	assert.NoError(t, Preflight(cfg, sqlite.Dialect{}), "uncapped dialect")

	cfg.Table = ""
	assert.True(t, errs.IsConfig(Preflight(cfg, sqlite.Dialect{})))
}

func TestQueries(t *testing.T) {
	sample, count, err := Queries(config.DefaultAnalysis(), oracle.Dialect{})
	require.NoError(t, err)

	assert.Contains(t, sample.SQL, "FROM COLIN_MGR_TST.CORP_PARTY t")
	assert.Contains(t, sample.SQL, "ROWNUM <= 10000")
	assert.Contains(t, count.SQL, "SELECT COUNT(*) AS count")
	assert.Equal(t, []any{"NOCDR"}, count.Args)
}

func TestFilterValues(t *testing.T) {
	tbl := &database.Table{
		Columns: []string{"corp_num", "mailing_addr_id"},
		Rows: [][]any{
			{"A", int64(7)},
			{"B", nil},
			{"C", int64(3)},
			{"D", int64(7)},
			{"E", int64(5)},
		},
	}

	got, err := FilterValues(tbl, "MAILING_ADDR_ID", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7), int64(3), int64(5)}, got)

	_, err = FilterValues(tbl, "mailing_addr_id", 2)
	assert.True(t, errs.IsFilterTooLarge(err))

	_, err = FilterValues(tbl, "delivery_addr_id", 0)
	assert.True(t, errs.IsInvalidInput(err))

	nulls := &database.Table{Columns: []string{"x"}, Rows: [][]any{{nil}, {nil}}}
	_, err = FilterValues(nulls, "x", 0)
	assert.True(t, errs.IsEmptySample(err))
}

func TestFilterValues_BytesAndStringsDedupe(t *testing.T) {
	tbl := &database.Table{
		Columns: []string{"code"},
		Rows:    [][]any{{[]byte("BC")}, {"BC"}, {[]byte("ON")}},
	}

	got, err := FilterValues(tbl, "code", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{[]byte("BC"), []byte("ON")}, got)
}
