// Package sqlite wires modernc.org/sqlite into nullscan. It serves local
// extracts and the end-to-end tests; the schema name for a plain database
// file is "main".
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"modernc.org/sqlite"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/sqldb"
	"github.com/koustreak/nullscan/internal/errs"
)

// Primary result codes, see https://www.sqlite.org/rescode.html
const (
	codePerm      = 3
	codeBusy      = 5
	codeLocked    = 6
	codeInterrupt = 9
	codeCantOpen  = 14
	codeAuth      = 23
	codeNotADB    = 26
)

// New opens the database file named by cfg.DSN.
func New(ctx context.Context, cfg *database.Config) (*sqldb.Driver, error) {
	return sqldb.Open(ctx, "sqlite", cfg, mapError)
}

// BuildDSN returns the database file path held in Service. The network
// fields of the descriptor are not used by SQLite.
func BuildDSN(c database.Credentials) string {
	return c.Service
}

// MapError is exported so tests that open their own *sql.DB can reuse it.
func MapError(err error, msg string) *errs.Error {
	return mapError(err, msg)
}

func mapError(err error, msg string) *errs.Error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return errs.Wrap(classify(sqlErr.Code()), fmt.Sprintf("%s: %s", msg, sqlErr.Error()), err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func classify(code int) errs.ErrKind {
	switch code & 0xff {
	case codeCantOpen, codeNotADB, codeBusy, codeLocked:
		return errs.ErrKindConnectionFailed
	case codePerm, codeAuth:
		return errs.ErrKindPermissionDenied
	case codeInterrupt:
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}

// Dialect emits SQLite syntax: ? placeholders, RANDOM() and LIMIT.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() database.Driver { return database.DriverSQLite }

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) RandomSample(cte string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s\nORDER BY RANDOM()\nLIMIT %d", cte, limit)
}

func (Dialect) MaxInListSize() int { return 0 }
