// Package profile computes per-column non-null statistics over a
// database.Table.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/errs"
)

// Entry is the profile of one column.
type Entry struct {
	Column       string  `json:"column"`
	NonNullCount int     `json:"non_null_count"`
	NullCount    int     `json:"null_count"`
	Percentage   float64 `json:"non_null_percentage"`
}

// PercentageString renders the percentage with two decimals, e.g. "70.00%".
func (e Entry) PercentageString() string {
	return fmt.Sprintf("%.2f%%", e.Percentage)
}

// Options controls presentation of the result.
type Options struct {
	// SortByCount orders entries by non-null count, highest first.
	// Ties keep column order.
	SortByCount bool

	// UppercaseColumns reports column names in upper case.
	UppercaseColumns bool
}

// Columns profiles every column of t. It does not modify t and returns the
// same result for the same input.
//
// An empty table has no meaningful percentage, so Columns returns an
// empty_sample error instead.
func Columns(t *database.Table, opts Options) ([]Entry, error) {
	total := t.Len()
	if total == 0 {
		return nil, errs.New(errs.ErrKindEmptySample, "no rows to profile")
	}

	counts := make([]int, len(t.Columns))
	for _, row := range t.Rows {
		for i := range counts {
			if i < len(row) && row[i] != nil {
				counts[i]++
			}
		}
	}

	entries := make([]Entry, len(t.Columns))
	for i, name := range t.Columns {
		if opts.UppercaseColumns {
			name = strings.ToUpper(name)
		}
		entries[i] = Entry{
			Column:       name,
			NonNullCount: counts[i],
			NullCount:    total - counts[i],
			Percentage:   percent(counts[i], total),
		}
	}

	if opts.SortByCount {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].NonNullCount > entries[j].NonNullCount
		})
	}

	return entries, nil
}

// percent returns n/total*100 unrounded. PercentageString is the only
// place that rounds.
func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
