// Package oracle wires the pure-Go go-ora driver into nullscan.
//
// Oracle is the default engine: the sampling SQL relies on
// DBMS_RANDOM.VALUE and ROWNUM, and IN lists are capped at 1000 literals
// (ORA-01795).
package oracle

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/sqldb"
	"github.com/koustreak/nullscan/internal/errs"
)

// MaxInListSize is Oracle's limit on expressions in an IN list.
const MaxInListSize = 1000

// New opens an Oracle connection pool and pings it.
func New(ctx context.Context, cfg *database.Config) (*sqldb.Driver, error) {
	return sqldb.Open(ctx, "oracle", cfg, mapError)
}

// BuildDSN renders credentials as an oracle:// URL for go-ora.
func BuildDSN(c database.Credentials) (string, error) {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 {
		return "", errs.Newf(errs.ErrKindConfig, "DB_PORT must be a positive number, got %q", c.Port)
	}
	return go_ora.BuildUrl(c.Host, port, c.Service, c.User, c.Password, nil), nil
}

var oraCode = regexp.MustCompile(`ORA-(\d{5})`)

// mapError classifies go-ora errors by their ORA- code.
func mapError(err error, msg string) *errs.Error {
	m := oraCode.FindStringSubmatch(err.Error())
	if m == nil {
		// No server code: network, TNS or protocol failure.
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}
	return errs.Wrap(classifyORA(m[1]), fmt.Sprintf("%s: ORA-%s", msg, m[1]), err)
}

func classifyORA(code string) errs.ErrKind {
	switch code {
	case "01017", // invalid username/password
		"12541", // no listener
		"12514", // listener does not know of service
		"12170", // connect timeout
		"03113", // end-of-file on communication channel
		"03114", // not connected
		"03135", // connection lost contact
		"28000": // account locked
		return errs.ErrKindConnectionFailed
	case "01031": // insufficient privileges
		return errs.ErrKindPermissionDenied
	case "01013": // user requested cancel
		return errs.ErrKindTimeout
	case "01795": // maximum number of expressions in a list is 1000
		return errs.ErrKindFilterTooLarge
	default:
		return errs.ErrKindQueryFailed
	}
}

// Dialect emits Oracle syntax: :n placeholders, DBMS_RANDOM and ROWNUM.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() database.Driver { return database.DriverOracle }

func (Dialect) Placeholder(n int) string { return fmt.Sprintf(":%d", n) }

func (Dialect) RandomSample(cte string, limit int) string {
	return fmt.Sprintf("SELECT * FROM (\n    SELECT * FROM %s\n    ORDER BY DBMS_RANDOM.VALUE\n) WHERE ROWNUM <= %d", cte, limit)
}

func (Dialect) MaxInListSize() int { return MaxInListSize }
