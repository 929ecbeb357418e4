// Package sqldb implements database.DB on top of database/sql.
//
// The Oracle, MySQL, SQL Server and SQLite packages register their
// database/sql driver and hand Open an ErrorMapper that knows their native
// error codes.
package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/errs"
)

// ErrorMapper translates a vendor error into *errs.Error. It is only called
// after the context and sql.ErrNoRows cases have been handled.
type ErrorMapper func(err error, msg string) *errs.Error

// Driver is a database/sql implementation of database.DB.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db      *sql.DB
	mapFunc ErrorMapper
}

// Open opens a pool for the named database/sql driver and pings it.
func Open(ctx context.Context, driverName string, cfg *database.Config, mapFunc ErrorMapper) (*Driver, error) {
	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "invalid DSN", err)
	}
	return wrap(ctx, db, cfg, mapFunc)
}

// FromDB wraps an already opened *sql.DB. Used by tests that build the
// pool themselves.
func FromDB(ctx context.Context, db *sql.DB, cfg *database.Config, mapFunc ErrorMapper) (*Driver, error) {
	return wrap(ctx, db, cfg, mapFunc)
}

func wrap(ctx context.Context, db *sql.DB, cfg *database.Config, mapFunc ErrorMapper) (*Driver, error) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := &Driver{db: db, mapFunc: mapFunc}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

// --- database.DB implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return d.mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.mapError(err, "query failed")
	}
	return &sqlRows{rows: rows, d: d}, nil
}

func (d *Driver) QueryRow(ctx context.Context, query string, args ...any) (database.Row, error) {
	return &sqlRow{row: d.db.QueryRowContext(ctx, query, args...), d: d}, nil
}

// mapError handles the cases every database/sql driver shares, then defers
// to the vendor mapper.
func (d *Driver) mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	if d.mapFunc != nil {
		return d.mapFunc(err, msg)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

// --- sql.DB type wrappers ---

type sqlRows struct {
	rows *sql.Rows
	d    *Driver
}

func (r *sqlRows) Next() bool { return r.rows.Next() }
func (r *sqlRows) Close()     { _ = r.rows.Close() }

func (r *sqlRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.d.mapError(err, "scan failed")
	}
	return nil
}

func (r *sqlRows) Columns() ([]string, error) {
	cols, err := r.rows.Columns()
	if err != nil {
		return nil, r.d.mapError(err, "failed to read columns")
	}
	return cols, nil
}

func (r *sqlRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return r.d.mapError(err, "row iteration failed")
	}
	return nil
}

type sqlRow struct {
	row *sql.Row
	d   *Driver
}

func (r *sqlRow) Scan(dest ...any) error {
	if err := r.row.Scan(dest...); err != nil {
		return r.d.mapError(err, "scan failed")
	}
	return nil
}
