// Package analysis runs a null-profiling analysis end to end: sample the
// target table, profile it, and optionally follow a link column into a
// connected table and profile that.
package analysis

import (
	"context"
	"time"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/errs"
	"github.com/koustreak/nullscan/internal/logger"
	"github.com/koustreak/nullscan/internal/profile"
	"github.com/koustreak/nullscan/internal/report"
)

// Analyzer executes one configured analysis against an open database.
// It does not own db; the caller closes it.
type Analyzer struct {
	db           database.DB
	dialect      database.Dialect
	cfg          config.Analysis
	queryTimeout time.Duration
	log          *logger.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithQueryTimeout bounds every individual query. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.queryTimeout = d }
}

// WithLogger sets the logger. The default is the logger in the Run context.
func WithLogger(l *logger.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// New creates an Analyzer.
func New(db database.DB, dialect database.Dialect, cfg config.Analysis, opts ...Option) *Analyzer {
	a := &Analyzer{db: db, dialect: dialect, cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Preflight rejects configurations that cannot succeed, before any
// connection is made. In non-direct mode the row limit bounds the number
// of filter values, so a limit above the dialect's IN-list cap is refused
// up front.
func Preflight(cfg config.Analysis, d database.Dialect) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	limit := d.MaxInListSize()
	if cfg.NonDirectMode && limit > 0 && cfg.RowLimit > limit {
		return errs.Newf(errs.ErrKindFilterTooLarge,
			"row limit %d exceeds the %s limit of %d values in an IN list; lower row_limit to use non-direct mode",
			cfg.RowLimit, d.Name(), limit)
	}
	return nil
}

// Run executes the analysis and returns the report. On error the partial
// report is returned alongside it, holding every stage that completed.
func (a *Analyzer) Run(ctx context.Context) (*report.Report, error) {
	log := a.log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log = log.With().
		Str("driver", string(a.dialect.Name())).
		Str("table", a.cfg.Schema+"."+a.cfg.Table).
		Logger()

	rep := report.New(string(a.dialect.Name()), a.cfg.Schema)
	defer rep.Finish()

	if err := Preflight(a.cfg, a.dialect); err != nil {
		log.ErrorWith("analysis rejected", err, nil)
		return rep, err
	}

	first, stage, err := a.sample(ctx, log)
	if err != nil {
		log.ErrorWith("sample stage failed", err, nil)
		return rep, err
	}
	rep.Add(stage)
	log.InfoWith("sample stage complete", map[string]any{
		"total_rows":  stage.TotalRows,
		"sample_rows": stage.SampleRows,
		"mode":        stage.Mode,
	})

	if !a.cfg.NonDirectMode {
		return rep, nil
	}

	stage, err = a.followUp(ctx, log, first)
	if err != nil {
		log.ErrorWith("connected stage failed", err, nil)
		return rep, err
	}
	rep.Add(stage)
	log.InfoWith("connected stage complete", map[string]any{
		"connected_table": stage.Table,
		"filter_values":   stage.FilterValues,
		"rows":            stage.SampleRows,
	})

	return rep, nil
}

func (a *Analyzer) profileOptions() profile.Options {
	return profile.Options{
		SortByCount:      a.cfg.SortByCount,
		UppercaseColumns: a.cfg.UppercaseColumns,
	}
}

// queryCtx derives the per-query deadline.
func (a *Analyzer) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.queryTimeout)
}

// fetch runs q and reads the whole result.
func (a *Analyzer) fetch(ctx context.Context, q database.Query) (*database.Table, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	rows, err := a.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	return database.ScanTable(rows)
}

// count runs a single-value COUNT query.
func (a *Analyzer) count(ctx context.Context, q database.Query) (int64, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	row, err := a.db.QueryRow(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, err
	}
	return database.ScanCount(row)
}
