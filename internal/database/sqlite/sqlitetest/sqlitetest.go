// Package sqlitetest creates throwaway SQLite databases seeded with fixture
// statements.
package sqlitetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/sqldb"
	"github.com/koustreak/nullscan/internal/database/sqlite"
)

// Path creates a database file under t.TempDir, runs each fixture
// statement and returns the file path, ready to be used as DB_SERVICE.
func Path(t testing.TB, fixtures ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nullscan.db")
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()

	seed(t, raw, fixtures)
	return path
}

// Open is Path followed by opening the file with the production driver
// wrapper. The handle is closed by t.Cleanup.
func Open(t testing.TB, fixtures ...string) database.DB {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "nullscan.db")
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	seed(t, raw, fixtures)

	db, err := sqldb.FromDB(ctx, raw, database.DefaultConfig(database.DriverSQLite, path), sqlite.MapError)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

func seed(t testing.TB, raw *sql.DB, fixtures []string) {
	t.Helper()
	for _, stmt := range fixtures {
		_, err := raw.ExecContext(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}
}
