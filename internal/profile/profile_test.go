package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/errs"
)

// table builds n rows; column c holds a value in the first nonNull[c] rows.
func table(n int, columns []string, nonNull []int) *database.Table {
	t := &database.Table{Columns: columns, Rows: make([][]any, n)}
	for r := 0; r < n; r++ {
		row := make([]any, len(columns))
		for c := range columns {
			if r < nonNull[c] {
				row[c] = r
			}
		}
		t.Rows[r] = row
	}
	return t
}

func TestColumns_CountsAndPercentages(t *testing.T) {
	tbl := table(10, []string{"corp_num", "mailing_addr_id", "end_event_id"}, []int{10, 7, 0})

	got, err := Columns(tbl, Options{})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, Entry{Column: "corp_num", NonNullCount: 10, NullCount: 0, Percentage: 100}, got[0])
	assert.Equal(t, "100.00%", got[0].PercentageString())
	assert.Equal(t, 7, got[1].NonNullCount)
	assert.Equal(t, "70.00%", got[1].PercentageString())
	assert.Equal(t, "0.00%", got[2].PercentageString())
	assert.Equal(t, 10, got[2].NullCount)
}

func TestColumns_Rounding(t *testing.T) {
	got, err := Columns(table(3, []string{"A"}, []int{1}), Options{})
	require.NoError(t, err)

	assert.InDelta(t, 33.333333, got[0].Percentage, 1e-6)
	assert.Equal(t, "33.33%", got[0].PercentageString())
}

func TestColumns_PercentageRoundsOnce(t *testing.T) {
	tests := []struct {
		rows int
		want string
	}{
		{160, "0.62%"},
		{32, "3.12%"},
		{8, "12.50%"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := Columns(table(tt.rows, []string{"X"}, []int{1}), Options{})
			require.NoError(t, err)

			assert.Equal(t, tt.want, got[0].PercentageString())
		})
	}
}

func TestColumns_EmptyTable(t *testing.T) {
	_, err := Columns(&database.Table{Columns: []string{"A"}, Rows: [][]any{}}, Options{})

	assert.True(t, errs.IsEmptySample(err))
}

func TestColumns_Uppercase(t *testing.T) {
	got, err := Columns(table(1, []string{"addr_id"}, []int{1}), Options{UppercaseColumns: true})
	require.NoError(t, err)

	assert.Equal(t, "ADDR_ID", got[0].Column)
}

func TestColumns_SortByCountIsStable(t *testing.T) {
	tbl := table(4, []string{"A", "B", "C", "D"}, []int{1, 3, 1, 4})

	got, err := Columns(tbl, Options{SortByCount: true})
	require.NoError(t, err)

	var order []string
	for _, e := range got {
		order = append(order, e.Column)
	}
	assert.Equal(t, []string{"D", "B", "A", "C"}, order)
}

func TestColumns_Idempotent(t *testing.T) {
	tbl := table(5, []string{"x", "y"}, []int{2, 5})

	first, err := Columns(tbl, Options{SortByCount: true, UppercaseColumns: true})
	require.NoError(t, err)
	second, err := Columns(tbl, Options{SortByCount: true, UppercaseColumns: true})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"x", "y"}, tbl.Columns)
}
