package main

import (
	"github.com/spf13/pflag"

	"github.com/koustreak/nullscan/internal/config"
)

// analysisFlags mirrors config.Analysis on the command line. Only flags the
// user actually set override the YAML file.
type analysisFlags struct {
	schema              string
	table               string
	eventIDColumn       string
	filingType          string
	rowLimit            int
	randomSampling      bool
	nonDirectMode       bool
	columnNameMain      string
	connectedTableName  string
	columnNameConnected string
	sortByCount         bool
	uppercaseColumns    bool
	eventTable          string
	filingTable         string
	eventKeyColumn      string
	filingTypeColumn    string
}

func (f *analysisFlags) register(fs *pflag.FlagSet) {
	d := config.DefaultAnalysis()

	fs.StringVar(&f.schema, "schema", d.Schema, "Schema of the target table")
	fs.StringVar(&f.table, "table", d.Table, "Target table")
	fs.StringVar(&f.eventIDColumn, "event-id-column", d.EventIDColumn, "Column of the target table holding the event id (empty disables the filter)")
	fs.StringVar(&f.filingType, "filing-type", d.FilingType, "Filing type code to filter by (empty disables the filter)")
	fs.IntVar(&f.rowLimit, "row-limit", d.RowLimit, "Rows in a random sample")
	fs.BoolVar(&f.randomSampling, "random-sampling", d.RandomSampling, "Sample rows at random instead of taking every filtered row")
	fs.BoolVar(&f.nonDirectMode, "non-direct-mode", d.NonDirectMode, "Follow --column-name-main into --connected-table-name and profile that table")
	fs.StringVar(&f.columnNameMain, "column-name-main", d.ColumnNameMain, "Link column in the target table")
	fs.StringVar(&f.connectedTableName, "connected-table-name", d.ConnectedTableName, "Connected table")
	fs.StringVar(&f.columnNameConnected, "column-name-connected", d.ColumnNameConnected, "Column of the connected table matched against the link values")
	fs.BoolVar(&f.sortByCount, "sort-by-count", d.SortByCount, "Sort results by non-null count, highest first")
	fs.BoolVar(&f.uppercaseColumns, "uppercase-columns", d.UppercaseColumns, "Report column names in upper case")
	fs.StringVar(&f.eventTable, "event-table", d.EventTable, "Event table of the filter join")
	fs.StringVar(&f.filingTable, "filing-table", d.FilingTable, "Filing table of the filter join")
	fs.StringVar(&f.eventKeyColumn, "event-key-column", d.EventKeyColumn, "Event id column in the event and filing tables")
	fs.StringVar(&f.filingTypeColumn, "filing-type-column", d.FilingTypeColumn, "Filing type column in the filing table")
}

// apply overrides a with every flag set on fs.
func (f *analysisFlags) apply(fs *pflag.FlagSet, a *config.Analysis) {
	strs := map[string]struct {
		dst *string
		src string
	}{
		"schema":                {&a.Schema, f.schema},
		"table":                 {&a.Table, f.table},
		"event-id-column":       {&a.EventIDColumn, f.eventIDColumn},
		"filing-type":           {&a.FilingType, f.filingType},
		"column-name-main":      {&a.ColumnNameMain, f.columnNameMain},
		"connected-table-name":  {&a.ConnectedTableName, f.connectedTableName},
		"column-name-connected": {&a.ColumnNameConnected, f.columnNameConnected},
		"event-table":           {&a.EventTable, f.eventTable},
		"filing-table":          {&a.FilingTable, f.filingTable},
		"event-key-column":      {&a.EventKeyColumn, f.eventKeyColumn},
		"filing-type-column":    {&a.FilingTypeColumn, f.filingTypeColumn},
	}
	for name, v := range strs {
		if fs.Changed(name) {
			*v.dst = v.src
		}
	}

	bools := map[string]struct {
		dst *bool
		src bool
	}{
		"random-sampling":   {&a.RandomSampling, f.randomSampling},
		"non-direct-mode":   {&a.NonDirectMode, f.nonDirectMode},
		"sort-by-count":     {&a.SortByCount, f.sortByCount},
		"uppercase-columns": {&a.UppercaseColumns, f.uppercaseColumns},
	}
	for name, v := range bools {
		if fs.Changed(name) {
			*v.dst = v.src
		}
	}

	if fs.Changed("row-limit") {
		a.RowLimit = f.rowLimit
	}
}

// loadAnalysis reads --config and applies the command's flags on top.
func loadAnalysis(fs *pflag.FlagSet, f *analysisFlags) (config.Analysis, error) {
	a, err := config.LoadAnalysis(configPath)
	if err != nil {
		return a, err
	}
	f.apply(fs, &a)
	return a, nil
}
