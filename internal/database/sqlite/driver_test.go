package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/sqlite"
	"github.com/koustreak/nullscan/internal/database/sqlite/sqlitetest"
	"github.com/koustreak/nullscan/internal/errs"
)

func TestNew_CreatesAndPings(t *testing.T) {
	cfg := database.DefaultConfig(database.DriverSQLite, filepath.Join(t.TempDir(), "scan.db"))

	db, err := sqlite.New(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
}

func TestDriver_ScanTable(t *testing.T) {
	db := sqlitetest.Open(t,
		`CREATE TABLE address (addr_id INTEGER, city TEXT, postal TEXT)`,
		`INSERT INTO address VALUES (1, 'Victoria', NULL), (2, NULL, NULL), (3, 'Nanaimo', 'V9R')`,
	)

	rows, err := db.Query(context.Background(), `SELECT * FROM address ORDER BY addr_id`)
	require.NoError(t, err)

	table, err := database.ScanTable(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"addr_id", "city", "postal"}, table.Columns)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, int64(1), table.Rows[0][0])
	assert.Equal(t, "Victoria", table.Rows[0][1])
	assert.Nil(t, table.Rows[1][1])
}

func TestDriver_QueryRowCount(t *testing.T) {
	db := sqlitetest.Open(t,
		`CREATE TABLE event (event_id INTEGER)`,
		`INSERT INTO event VALUES (1), (2)`,
	)

	row, err := db.QueryRow(context.Background(), `SELECT COUNT(*) AS count FROM event WHERE event_id > ?`, 0)
	require.NoError(t, err)

	n, err := database.ScanCount(row)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDriver_MissingTable(t *testing.T) {
	db := sqlitetest.Open(t)

	_, err := db.Query(context.Background(), `SELECT * FROM nope`)

	assert.True(t, errs.IsQueryFailed(err), "got %v", err)
}

func TestDriver_CanceledContext(t *testing.T) {
	db := sqlitetest.Open(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Query(ctx, `SELECT 1`)

	assert.True(t, errs.IsTimeout(err), "got %v", err)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "SELECT * FROM filtered_rows\nORDER BY RANDOM()\nLIMIT 7", sqlite.Dialect{}.RandomSample("filtered_rows", 7))
	assert.Equal(t, "data/extract.db", sqlite.BuildDSN(database.Credentials{Service: "data/extract.db"}))
}
