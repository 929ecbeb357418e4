package analysis

import (
	"context"
	"fmt"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/errs"
	"github.com/koustreak/nullscan/internal/logger"
	"github.com/koustreak/nullscan/internal/profile"
	"github.com/koustreak/nullscan/internal/report"
)

// FilterValues collects the distinct non-null values of column in t, in
// the order they first appear. column is matched case-insensitively.
// limit bounds the number of values; 0 means unbounded.
func FilterValues(t *database.Table, column string, limit int) ([]any, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "link column %q is not in the sampled table", column)
	}

	seen := make(map[string]struct{})
	values := make([]any, 0)
	for _, row := range t.Rows {
		v := row[idx]
		if v == nil {
			continue
		}
		k := valueKey(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, errs.Newf(errs.ErrKindEmptySample, "link column %q has no non-null values", column)
	}
	if limit > 0 && len(values) > limit {
		return nil, errs.Newf(errs.ErrKindFilterTooLarge,
			"%d distinct %s values exceed the limit of %d values in an IN list", len(values), column, limit)
	}
	return values, nil
}

// valueKey identifies v for de-duplication. []byte is not comparable, and
// drivers may return the same value as string or []byte.
func valueKey(v any) string {
	switch x := v.(type) {
	case []byte:
		return "s:" + string(x)
	case string:
		return "s:" + x
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

// followUp runs stage two: select the connected table's rows whose
// connected column matches a link value of the first sample, and profile
// them.
func (a *Analyzer) followUp(ctx context.Context, log *logger.Logger, first *database.Table) (report.Stage, error) {
	values, err := FilterValues(first, a.cfg.ColumnNameMain, a.dialect.MaxInListSize())
	if err != nil {
		return report.Stage{}, err
	}

	// The connected table is used as given; qualify it in the config when it
	// lives outside the session's default schema.
	q, err := database.SelectIn(a.cfg.ConnectedTableName, a.cfg.ColumnNameConnected, values)
	if err != nil {
		return report.Stage{}, err
	}

	log.Debugf("connected query over %d values:\n%s", len(values), q.SQL)
	t, err := a.fetch(ctx, q)
	if err != nil {
		return report.Stage{}, err
	}

	entries, err := profile.Columns(t, a.profileOptions())
	if err != nil {
		return report.Stage{}, err
	}

	return report.Stage{
		Name:       report.StageConnected,
		Table:      a.cfg.ConnectedTableName,
		Mode:       report.ModeLinked,
		SampleRows: t.Len(),
		Link: &report.Link{
			FromTable:  a.cfg.Table,
			FromColumn: a.cfg.ColumnNameMain,
			ToTable:    a.cfg.ConnectedTableName,
			ToColumn:   a.cfg.ColumnNameConnected,
		},
		FilterValues: len(values),
		Entries:      entries,
	}, nil
}
