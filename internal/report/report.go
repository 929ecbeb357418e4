// Package report holds the result of an analysis run and renders it as
// console text or JSON, or uploads it to object storage.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/nullscan/internal/profile"
)

// Mode is how a stage selected its rows.
type Mode string

const (
	ModeRandom Mode = "random"
	ModeFull   Mode = "full"
	ModeLinked Mode = "linked"
)

// Stage names.
const (
	StageSample    = "sample"
	StageConnected = "connected"
)

// Link describes the column pair a connected stage was reached through.
type Link struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// Stage is the outcome of one query-and-profile step.
type Stage struct {
	Name       string `json:"name"`
	Table      string `json:"table"`
	FilingType string `json:"filing_type,omitempty"`
	Mode       Mode   `json:"mode"`

	// TotalRows counts every row matching the filter. Sample stage only.
	TotalRows int64 `json:"total_rows,omitempty"`
	// SampleRows is the number of rows profiled.
	SampleRows int `json:"sample_rows"`
	// Coverage is SampleRows/TotalRows*100 in random mode, else 0.
	Coverage float64 `json:"coverage_percentage"`

	// Link and FilterValues are set on the connected stage.
	Link         *Link `json:"link,omitempty"`
	FilterValues int   `json:"filter_values,omitempty"`

	Entries []profile.Entry `json:"entries"`
}

// Report is one complete analysis run.
type Report struct {
	RunID      uuid.UUID `json:"run_id"`
	Driver     string    `json:"driver"`
	Schema     string    `json:"schema"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Stages     []Stage   `json:"stages"`
}

// New starts a report with a fresh run id.
func New(driver, schema string) *Report {
	return &Report{
		RunID:     uuid.New(),
		Driver:    driver,
		Schema:    schema,
		StartedAt: time.Now().UTC(),
		Stages:    make([]Stage, 0, 2),
	}
}

// Add appends a finished stage.
func (r *Report) Add(s Stage) {
	r.Stages = append(r.Stages, s)
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Final returns the stage whose entries are the run's result, or nil when
// no stage completed.
func (r *Report) Final() *Stage {
	if len(r.Stages) == 0 {
		return nil
	}
	return &r.Stages[len(r.Stages)-1]
}

// Coverage returns sample/total*100, or 0 when total is 0.
func Coverage(sample int, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(sample) / float64(total) * 100
}
