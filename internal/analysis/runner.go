package analysis

import (
	"context"
	"time"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/connect"
	"github.com/koustreak/nullscan/internal/report"
)

// OpenFunc opens a database handle.
type OpenFunc func(ctx context.Context, cfg *database.Config) (database.DB, error)

// Runner opens a connection per analysis and closes it afterwards. It is
// safe for concurrent use; each Run gets its own connection.
type Runner struct {
	DB           *database.Config
	Dialect      database.Dialect
	QueryTimeout time.Duration

	// Open defaults to connect.Open.
	Open OpenFunc
}

// NewRunner builds a Runner for the given connection settings. Analyses
// log through the logger carried by the Run context.
func NewRunner(driver database.Driver, creds database.Credentials, queryTimeout time.Duration) (*Runner, error) {
	dialect, err := connect.DialectFor(driver)
	if err != nil {
		return nil, err
	}
	dsn, err := connect.DSN(driver, creds)
	if err != nil {
		return nil, err
	}

	cfg := database.DefaultConfig(driver, dsn)
	if queryTimeout > 0 {
		cfg.QueryTimeout = queryTimeout
	}

	return &Runner{
		DB:           cfg,
		Dialect:      dialect,
		QueryTimeout: cfg.QueryTimeout,
	}, nil
}

// Connect opens and pings a new handle. The caller closes it.
func (r *Runner) Connect(ctx context.Context) (database.DB, error) {
	open := r.Open
	if open == nil {
		open = connect.Open
	}
	return open(ctx, r.DB)
}

// Ping checks that the database accepts connections.
func (r *Runner) Ping(ctx context.Context) error {
	db, err := r.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping(ctx)
}

// Analyze runs cfg over an already open handle.
func (r *Runner) Analyze(ctx context.Context, db database.DB, cfg config.Analysis) (*report.Report, error) {
	return New(db, r.Dialect, cfg, WithQueryTimeout(r.QueryTimeout)).Run(ctx)
}

// Run validates cfg, connects, analyzes and disconnects.
func (r *Runner) Run(ctx context.Context, cfg config.Analysis) (*report.Report, error) {
	if err := Preflight(cfg, r.Dialect); err != nil {
		return nil, err
	}

	db, err := r.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return r.Analyze(ctx, db, cfg)
}
