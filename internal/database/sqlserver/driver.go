package sqlserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/sqldb"
	"github.com/koustreak/nullscan/internal/errs"
)

// SQL Server error numbers (sys.messages)
const (
	errLoginFailed     = 18456
	errCannotOpenDB    = 4060
	errInvalidObject   = 208
	errInvalidColumn   = 207
	errSelectDenied    = 229
	errColumnDenied    = 230
	errQueryCancelled  = 3617
	errTooManyLiterals = 8623
)

// New opens a SQL Server connection pool and pings it.
func New(ctx context.Context, cfg *database.Config) (*sqldb.Driver, error) {
	return sqldb.Open(ctx, "sqlserver", cfg, mapError)
}

// BuildDSN renders credentials as a sqlserver:// URL. Service is the
// database name.
func BuildDSN(c database.Credentials) string {
	q := url.Values{}
	q.Set("database", c.Service)
	if c.SSLMode == "disable" {
		q.Set("encrypt", "disable")
	}
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		RawQuery: q.Encode(),
	}
	return u.String()
}

func mapError(err error, msg string) *errs.Error {
	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		return errs.Wrap(classify(sqlErr.Number), fmt.Sprintf("%s: %s", msg, sqlErr.Message), err)
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classify(number int32) errs.ErrKind {
	switch number {
	case errLoginFailed, errCannotOpenDB:
		return errs.ErrKindConnectionFailed
	case errSelectDenied, errColumnDenied:
		return errs.ErrKindPermissionDenied
	case errQueryCancelled:
		return errs.ErrKindTimeout
	case errTooManyLiterals:
		return errs.ErrKindFilterTooLarge
	case errInvalidObject, errInvalidColumn:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}

// Dialect emits T-SQL: @pN placeholders, NEWID() and TOP.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() database.Driver { return database.DriverSQLServer }

func (Dialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

func (Dialect) RandomSample(cte string, limit int) string {
	return fmt.Sprintf("SELECT TOP (%d) * FROM %s\nORDER BY NEWID()", limit, cte)
}

// MaxInListSize is zero: SQL Server fails very large IN lists with 8623
// rather than a fixed cap, and that error is mapped to filter_too_large.
func (Dialect) MaxInListSize() int { return 0 }
