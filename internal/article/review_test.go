package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLog_EmptyIsNotApproved(t *testing.T) {
	log := NewReviewLog()

	assert.False(t, log.IsApproved())
	assert.Nil(t, log.Latest())
	assert.Equal(t, 0, log.Len())
}

func TestReviewLog_LatestEntryWins(t *testing.T) {
	log := NewReviewLog()
	log.Append(ReviewOutcome{Approved: false, Score: 40, Comments: "needs work"})

	assert.False(t, log.IsApproved())

	log.Append(ReviewOutcome{Approved: true, Score: 85, Comments: "good"})

	assert.True(t, log.IsApproved())
	require.NotNil(t, log.Latest())
	assert.Equal(t, 85, log.Latest().Score)
	assert.Equal(t, 2, log.Len())
}

func TestReviewLog_ApprovalNotTiedToScore(t *testing.T) {
	log := NewReviewLog()
	// A high score with an explicit rejection stays rejected.
	log.Append(ReviewOutcome{Approved: false, Score: 95, Comments: "off brand"})

	assert.False(t, log.IsApproved())
}

func TestReviewLog_SeededWithPriorHistory(t *testing.T) {
	prior := []ReviewOutcome{
		{Approved: false, Score: 30, Comments: "first"},
		{Approved: false, Score: 50, Comments: "second"},
	}

	log := NewReviewLog(prior...)

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, "second", log.Latest().Comments)
}

func TestReviewLog_HistoryIsACopy(t *testing.T) {
	log := NewReviewLog(ReviewOutcome{Approved: false, Comments: "original"})

	history := log.History()
	history[0].Comments = "mutated"

	assert.Equal(t, "original", log.Latest().Comments)
}

func TestReviewLog_HistoryPreservesOrder(t *testing.T) {
	log := NewReviewLog()
	log.Append(ReviewOutcome{Score: 1})
	log.Append(ReviewOutcome{Score: 2})
	log.Append(ReviewOutcome{Score: 3})

	history := log.History()
	require.Len(t, history, 3)
	assert.Equal(t, 1, history[0].Score)
	assert.Equal(t, 2, history[1].Score)
	assert.Equal(t, 3, history[2].Score)
}
