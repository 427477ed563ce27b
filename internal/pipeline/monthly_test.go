package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/recipepocket/content-agent/internal/agents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousMonthKey(t *testing.T) {
	tests := []struct {
		now  string
		want string
	}{
		{"2026-03-29", "2026-02"},
		{"2026-03-31", "2026-02"},
		{"2026-05-31", "2026-04"},
		{"2026-07-31", "2026-06"},
		{"2026-08-31", "2026-07"},
		{"2026-10-31", "2026-09"},
		{"2026-12-31", "2026-11"},
		{"2026-04-15", "2026-03"},
		{"2026-01-15", "2025-12"},
	}
	for _, tt := range tests {
		now, err := time.Parse("2006-01-02", tt.now)
		require.NoError(t, err)
		assert.Equal(t, tt.want, previousMonthKey(now), "now=%s", tt.now)
	}
}

func TestRunMonthlyReport_DefaultsToPreviousMonth(t *testing.T) {
	gw := happyGateway()
	gw.monthly = &agents.MonthlyAnalysisResult{Analysis: "quiet month"}
	store := &fakeStore{}
	runner := newTestRunner(gw, &fakeImages{}, store, &fakeAnalytics{snapshot: testSnapshot()}, nil)

	report, err := runner.RunMonthlyReport(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, previousMonthKey(time.Now()), report.Month)
}
