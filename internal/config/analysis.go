package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/nullscan/internal/errs"
)

// Analysis is one profiling run. YAML and JSON keys are identical so the
// same document works as a config file and as an HTTP request body.
type Analysis struct {
	Schema        string `yaml:"schema" json:"schema"`
	Table         string `yaml:"table" json:"table"`
	EventIDColumn string `yaml:"event_id_column" json:"event_id_column"`
	FilingType    string `yaml:"filing_type" json:"filing_type"`

	// RowLimit caps the random sample. Full range mode does not truncate,
	// but in non-direct mode the limit is still checked against the
	// dialect's IN-list cap before connecting.
	RowLimit       int  `yaml:"row_limit" json:"row_limit"`
	RandomSampling bool `yaml:"random_sampling" json:"random_sampling"`

	// NonDirectMode profiles ConnectedTableName instead, restricted to the
	// distinct ColumnNameMain values of the first sample.
	NonDirectMode       bool   `yaml:"non_direct_mode" json:"non_direct_mode"`
	ColumnNameMain      string `yaml:"column_name_main" json:"column_name_main"`
	ConnectedTableName  string `yaml:"connected_table_name" json:"connected_table_name"`
	ColumnNameConnected string `yaml:"column_name_connected" json:"column_name_connected"`

	SortByCount      bool `yaml:"sort_by_count" json:"sort_by_count"`
	UppercaseColumns bool `yaml:"uppercase_columns" json:"uppercase_columns"`

	// Join tables for the filing-type filter.
	EventTable       string `yaml:"event_table" json:"event_table"`
	FilingTable      string `yaml:"filing_table" json:"filing_table"`
	EventKeyColumn   string `yaml:"event_key_column" json:"event_key_column"`
	FilingTypeColumn string `yaml:"filing_type_column" json:"filing_type_column"`
}

// DefaultAnalysis returns the stock CORP_PARTY / NOCDR analysis.
func DefaultAnalysis() Analysis {
	return Analysis{
		Schema:              "COLIN_MGR_TST",
		Table:               "CORP_PARTY",
		EventIDColumn:       "START_EVENT_ID",
		FilingType:          "NOCDR",
		RowLimit:            10000,
		RandomSampling:      true,
		NonDirectMode:       true,
		ColumnNameMain:      "MAILING_ADDR_ID",
		ConnectedTableName:  "ADDRESS",
		ColumnNameConnected: "ADDR_ID",
		UppercaseColumns:    true,
		EventTable:          "EVENT",
		FilingTable:         "FILING",
		EventKeyColumn:      "EVENT_ID",
		FilingTypeColumn:    "FILING_TYP_CD",
	}
}

// LoadAnalysis decodes path over DefaultAnalysis. Keys absent from the
// file keep their defaults. An empty path returns the defaults.
func LoadAnalysis(path string) (Analysis, error) {
	a := DefaultAnalysis()
	if path == "" {
		return a, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return a, errs.Wrap(errs.ErrKindConfig, "failed to read analysis file "+path, err)
	}
	if err := a.decodeYAML(raw); err != nil {
		return a, err
	}
	return a, nil
}

func (a *Analysis) decodeYAML(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(a); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrKindConfig, "invalid analysis file", err)
	}
	return nil
}

// Filtered reports whether the filing-type filter applies.
func (a Analysis) Filtered() bool {
	return a.EventIDColumn != "" && a.FilingType != ""
}

// Validate checks the options that can be checked without a database.
func (a Analysis) Validate() error {
	if a.Schema == "" || a.Table == "" {
		return errs.New(errs.ErrKindConfig, "missing schema configuration or table name")
	}
	if (a.EventIDColumn == "") != (a.FilingType == "") {
		return errs.New(errs.ErrKindConfig, "event_id_column and filing_type must be set together")
	}
	if a.RowLimit < 0 {
		return errs.Newf(errs.ErrKindConfig, "row_limit must not be negative, got %d", a.RowLimit)
	}
	if a.NonDirectMode && (a.ColumnNameMain == "" || a.ConnectedTableName == "" || a.ColumnNameConnected == "") {
		return errs.New(errs.ErrKindConfig,
			"non_direct_mode needs column_name_main, connected_table_name and column_name_connected")
	}
	return nil
}
