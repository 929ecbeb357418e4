package analysis

import (
	"context"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/logger"
	"github.com/koustreak/nullscan/internal/profile"
	"github.com/koustreak/nullscan/internal/report"
)

// Queries builds the sample and count queries of the first stage.
func Queries(cfg config.Analysis, d database.Dialect) (sample, count database.Query, err error) {
	b := database.Sample(cfg.Schema, cfg.Table, d)
	if cfg.Filtered() {
		b.FilterBy(database.Filter{
			Column:           cfg.EventIDColumn,
			FilingType:       cfg.FilingType,
			EventTable:       cfg.EventTable,
			FilingTable:      cfg.FilingTable,
			EventKey:         cfg.EventKeyColumn,
			FilingTypeColumn: cfg.FilingTypeColumn,
		})
	}
	if cfg.RandomSampling {
		b.Random(cfg.RowLimit)
	}

	if sample, err = b.Build(); err != nil {
		return database.Query{}, database.Query{}, err
	}
	if count, err = b.BuildCount(); err != nil {
		return database.Query{}, database.Query{}, err
	}
	return sample, count, nil
}

// sample runs stage one: count the filtered rows, fetch the sample and
// profile it.
func (a *Analyzer) sample(ctx context.Context, log *logger.Logger) (*database.Table, report.Stage, error) {
	sampleQ, countQ, err := Queries(a.cfg, a.dialect)
	if err != nil {
		return nil, report.Stage{}, err
	}

	log.Debugf("count query:\n%s", countQ.SQL)
	total, err := a.count(ctx, countQ)
	if err != nil {
		return nil, report.Stage{}, err
	}

	log.Debugf("sample query:\n%s", sampleQ.SQL)
	t, err := a.fetch(ctx, sampleQ)
	if err != nil {
		return nil, report.Stage{}, err
	}

	entries, err := profile.Columns(t, a.profileOptions())
	if err != nil {
		return nil, report.Stage{}, err
	}

	stage := report.Stage{
		Name:       report.StageSample,
		Table:      a.cfg.Table,
		FilingType: a.cfg.FilingType,
		Mode:       report.ModeFull,
		TotalRows:  total,
		SampleRows: t.Len(),
		Entries:    entries,
	}
	if a.cfg.RandomSampling {
		stage.Mode = report.ModeRandom
		stage.Coverage = report.Coverage(t.Len(), total)
	}
	return t, stage, nil
}
