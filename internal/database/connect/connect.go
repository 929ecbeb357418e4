// Package connect picks the driver package for a database.Driver name.
// It is the only place that imports every vendor package.
package connect

import (
	"context"
	"strings"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/mysql"
	"github.com/koustreak/nullscan/internal/database/oracle"
	"github.com/koustreak/nullscan/internal/database/postgres"
	"github.com/koustreak/nullscan/internal/database/sqlite"
	"github.com/koustreak/nullscan/internal/database/sqlserver"
	"github.com/koustreak/nullscan/internal/errs"
)

// ParseDriver normalises a driver name. "oci" and "ora" are accepted for
// Oracle, "pgx" and "postgresql" for Postgres, "mssql" for SQL Server.
func ParseDriver(name string) (database.Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "oracle", "ora", "oci":
		return database.DriverOracle, nil
	case "postgres", "postgresql", "pgx":
		return database.DriverPostgres, nil
	case "mysql", "mariadb":
		return database.DriverMySQL, nil
	case "sqlserver", "mssql":
		return database.DriverSQLServer, nil
	case "sqlite", "sqlite3":
		return database.DriverSQLite, nil
	default:
		return "", errs.Newf(errs.ErrKindConfig, "unsupported DB_DRIVER %q", name)
	}
}

// DialectFor returns the SQL dialect of driver.
func DialectFor(driver database.Driver) (database.Dialect, error) {
	switch driver {
	case database.DriverOracle:
		return oracle.Dialect{}, nil
	case database.DriverPostgres:
		return postgres.Dialect{}, nil
	case database.DriverMySQL:
		return mysql.Dialect{}, nil
	case database.DriverSQLServer:
		return sqlserver.Dialect{}, nil
	case database.DriverSQLite:
		return sqlite.Dialect{}, nil
	default:
		return nil, errs.Newf(errs.ErrKindConfig, "unsupported driver %q", driver)
	}
}

// DSN renders the connection descriptor for driver.
func DSN(driver database.Driver, c database.Credentials) (string, error) {
	switch driver {
	case database.DriverOracle:
		return oracle.BuildDSN(c)
	case database.DriverPostgres:
		return postgres.BuildDSN(c), nil
	case database.DriverMySQL:
		return mysql.BuildDSN(c), nil
	case database.DriverSQLServer:
		return sqlserver.BuildDSN(c), nil
	case database.DriverSQLite:
		return sqlite.BuildDSN(c), nil
	default:
		return "", errs.Newf(errs.ErrKindConfig, "unsupported driver %q", driver)
	}
}

// Open connects with the driver named in cfg.Driver and pings it.
func Open(ctx context.Context, cfg *database.Config) (database.DB, error) {
	switch cfg.Driver {
	case database.DriverOracle:
		d, err := oracle.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case database.DriverPostgres:
		d, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case database.DriverMySQL:
		d, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case database.DriverSQLServer:
		d, err := sqlserver.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case database.DriverSQLite:
		d, err := sqlite.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, errs.Newf(errs.ErrKindConfig, "unsupported driver %q", cfg.Driver)
	}
}
