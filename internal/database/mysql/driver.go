package mysql

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/sqldb"
	"github.com/koustreak/nullscan/internal/errs"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDBAccessDenied  = 1044
	errAccessDenied    = 1045
	errNoDatabase      = 1046
	errUnknownDatabase = 1049
	errTooManyConns    = 1040
	errUserTooManyConn = 1203
	errBadField        = 1054
	errParse           = 1064
	errNoSuchTable     = 1146
	errTableAccess     = 1142
	errColumnAccess    = 1143
	errQueryTimeout    = 3024
)

// New opens a MySQL connection pool and pings it.
func New(ctx context.Context, cfg *database.Config) (*sqldb.Driver, error) {
	return sqldb.Open(ctx, "mysql", cfg, mapError)
}

// BuildDSN renders credentials in go-sql-driver format. Service is the
// database (schema) name.
func BuildDSN(c database.Credentials) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Service
	mc.ParseTime = true
	return mc.FormatDSN()
}

// mapError translates go-sql-driver/mysql errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps MySQL error numbers to ErrKind.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case errDBAccessDenied, errAccessDenied, errNoDatabase, errUnknownDatabase:
		return errs.ErrKindConnectionFailed
	case errTooManyConns, errUserTooManyConn:
		return errs.ErrKindConnectionFailed
	case errTableAccess, errColumnAccess:
		return errs.ErrKindPermissionDenied
	case errQueryTimeout:
		return errs.ErrKindTimeout
	case errBadField, errParse, errNoSuchTable:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}

// Dialect emits MySQL syntax: ? placeholders, RAND() and LIMIT.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() database.Driver { return database.DriverMySQL }

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) RandomSample(cte string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s\nORDER BY RAND()\nLIMIT %d", cte, limit)
}

// MaxInListSize is zero: MySQL bounds IN lists only by max_allowed_packet.
func (Dialect) MaxInListSize() int { return 0 }
