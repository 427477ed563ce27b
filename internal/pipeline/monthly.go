package pipeline

import (
	"context"
	"time"

	"github.com/recipepocket/content-agent/internal/article"
)

// RunMonthlyReport runs the monthly reporting cycle: fetch the month's
// aggregated analytics, ask the analyst for a digest, and upsert the report
// keyed by month. Safe to re-run for the same month.
//
// month is a "YYYY-MM" key; empty means the previous calendar month.
func (r *Runner) RunMonthlyReport(ctx context.Context, month string) (*article.MonthlyReport, error) {
	if month == "" {
		month = previousMonthKey(time.Now())
	}

	r.log.Info(StagePipeline, "monthly report cycle for %s", month)

	snapshot, err := r.analytics.FetchMonthly(ctx, month)
	if err != nil {
		r.log.Error(StagePipeline, "failed to fetch monthly analytics: %v", err)
		return nil, err
	}

	metrics := snapshot.Serialize()
	analysis, err := r.agents.MonthlyAnalysis(ctx, month, metrics)
	if err != nil {
		r.log.Error(StageAnalyzing, "monthly analysis failed: %v", err)
		return nil, err
	}

	report := &article.MonthlyReport{
		Month:      month,
		CreatedAt:  time.Now(),
		Metrics:    metrics,
		Analysis:   analysis.Analysis,
		Highlights: analysis.Highlights,
	}
	if err := r.store.UpsertMonthlyReport(ctx, report); err != nil {
		r.log.Error(StagePersisting, "failed to save monthly report: %v", err)
		return nil, err
	}

	r.log.Success(StagePipeline, "monthly report %s saved", month)
	return report, nil
}

// previousMonthKey returns the month key preceding now's month. The date is
// anchored at the first of the month before subtracting: AddDate on a day the
// shorter month lacks (Mar 31, minus one month) normalizes forward and would
// land back in the current month.
func previousMonthKey(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return article.MonthKey(first.AddDate(0, -1, 0))
}
