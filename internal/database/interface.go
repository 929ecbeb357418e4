package database

import "context"

// DB is the read-only contract every driver implements. Profiling only
// ever issues SELECTs, so there is no Exec.
type DB interface {
	Ping(ctx context.Context) error

	// Close releases the pool. It is safe to call more than once.
	Close()

	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow defers "no rows" to Row.Scan.
	QueryRow(ctx context.Context, sql string, args ...any) (Row, error)
}

// Rows is a forward-only result set. Close must be called even when
// Query returned rows alongside an iteration error.
type Rows interface {
	Next() bool
	Scan(dest ...any) error

	// Columns returns names in select-list order. Profiles are reported
	// in this order unless sorted by count.
	Columns() ([]string, error)

	Close()
	Err() error
}

// Row is the single-row result of QueryRow.
type Row interface {
	Scan(dest ...any) error
}
