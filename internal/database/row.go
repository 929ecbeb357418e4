package database

import (
	"errors"
	"strings"

	"github.com/koustreak/nullscan/internal/errs"
)

// Table is an in-memory tabular result: ordered column names and rows whose
// values line up with Columns. A nil value is SQL NULL.
//
// A Table is treated as immutable once ScanTable returns it.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex finds a column by name, ignoring case, since drivers disagree
// on the case they report (Oracle upper, Postgres lower).
// It returns -1 when the column is absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// ScanTable reads all rows from the result set into a Table.
//
// The returned Rows slice is always non-nil (empty slice on zero rows).
// ScanTable always closes rows.
func ScanTable(rows Rows) (*Table, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrapQuery("failed to read column names", err)
	}

	t := &Table{Columns: columns, Rows: make([][]any, 0)}

	for rows.Next() {
		// Scan into *any so the driver can write whatever type it has.
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, wrapQuery("failed to scan row", err)
		}
		t.Rows = append(t.Rows, dest)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQuery("error during row iteration", err)
	}

	return t, nil
}

// ScanCount reads a single integer column, as returned by SELECT COUNT(*).
func ScanCount(row Row) (int64, error) {
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, wrapQuery("failed to scan row count", err)
	}
	return n, nil
}

// wrapQuery keeps the kind a driver already assigned (timeout, connection
// loss) and falls back to query_failed for raw errors.
func wrapQuery(msg string, err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return errs.Wrap(e.Kind, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
