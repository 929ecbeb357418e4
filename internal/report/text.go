package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/koustreak/nullscan/internal/errs"
	"github.com/koustreak/nullscan/internal/profile"
)

// Column headers of the results table.
const (
	HeaderColumn     = "Column Name"
	HeaderCount      = "Non-NULL Count"
	HeaderPercentage = "Non-NULL Percentage"
)

// Divider separates the sections of the console output.
var Divider = strings.Repeat("-", 100)

var (
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numericStyle = cellStyle.Align(lipgloss.Right)
)

// WriteText renders the stage narration followed by the results table of
// the final stage.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder

	for i, s := range r.Stages {
		switch s.Name {
		case StageSample:
			writeSampleStage(&sb, s)
			if i < len(r.Stages)-1 {
				sb.WriteString("Stage 1 analyzing complete\n")
				sb.WriteString(Divider + "\n")
			}
		case StageConnected:
			writeConnectedStage(&sb, s)
		}
	}

	if final := r.Final(); final != nil {
		sb.WriteString("\nAnalysis Results:\n")
		sb.WriteString(Table(final.Entries))
		sb.WriteString("\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write report", err)
	}
	return nil
}

func writeSampleStage(sb *strings.Builder, s Stage) {
	fmt.Fprintf(sb, "\nAnalyzing %s for filing type: %s\n", s.Table, s.FilingType)
	fmt.Fprintf(sb, "Total rows matching filter: %s\n", humanize.Comma(s.TotalRows))
	if s.Mode == ModeRandom {
		fmt.Fprintf(sb, "Random sample size: %s rows (%.2f%% of filtered data)\n",
			humanize.Comma(int64(s.SampleRows)), s.Coverage)
	} else {
		fmt.Fprintf(sb, "Full Range Mode, taking all %d rows\n", s.SampleRows)
	}
	sb.WriteString(Divider + "\n")
}

func writeConnectedStage(sb *strings.Builder, s Stage) {
	sb.WriteString("Stage 2 started.\n")
	if l := s.Link; l != nil {
		fmt.Fprintf(sb, "Analyzing...\nTable - %s ------> Table - %s,\n", l.FromTable, l.ToTable)
		fmt.Fprintf(sb, "Through %s [%s] -----> %s [%s]\n", l.FromTable, l.FromColumn, l.ToTable, l.ToColumn)
	}
}

// Table renders entries as a bordered three-column table.
func Table(entries []profile.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Column, strconv.Itoa(e.NonNullCount), e.PercentageString()}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(HeaderColumn, HeaderCount, HeaderPercentage).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col > 0 && row >= 0 {
				return numericStyle
			}
			return cellStyle
		})

	return t.String()
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to encode report", err)
	}
	return nil
}
