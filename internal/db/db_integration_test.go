//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipepocket/content-agent/internal/article"
)

func TestDB_Integration(t *testing.T) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	database, err := Connect(ctx, databaseURL)
	require.NoError(t, err)
	defer database.Close()

	id := uuid.New().String()
	draft := &article.Draft{
		ID:    id,
		Topic: fmt.Sprintf("integration test topic %s", id[:8]),
		Strategy: &article.StrategyResult{
			Title:          "Integration Test Title " + id[:8],
			MarketingAngle: "none",
		},
		Content: article.Content{
			BodyPart1: "part one",
			BodyPart2: "part two",
			BodyPart3: "part three",
		},
		Status:    article.StatusDrafting,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, database.UpsertArticle(ctx, draft))
	t.Cleanup(func() {
		_, err := database.pool.Exec(context.Background(), `DELETE FROM articles WHERE id = $1`, id)
		assert.NoError(t, err)
	})

	t.Run("GetArticle", func(t *testing.T) {
		loaded, err := database.GetArticle(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, draft.Topic, loaded.Topic)
		assert.Equal(t, draft.Content, loaded.Content)
		assert.Equal(t, article.StatusDrafting, loaded.Status)
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		draft.Content.BodyPart2 = "rewritten part two"
		draft.Status = article.StatusReviewing
		require.NoError(t, database.UpsertArticle(ctx, draft))

		loaded, err := database.GetArticle(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "rewritten part two", loaded.Content.BodyPart2)
		assert.Equal(t, article.StatusReviewing, loaded.Status)
	})

	t.Run("UpdateArticleStatus", func(t *testing.T) {
		require.NoError(t, database.UpdateArticleStatus(ctx, id, article.StatusApproved))

		loaded, err := database.GetArticle(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, article.StatusApproved, loaded.Status)
	})

	t.Run("UpdateStatusUnknownID", func(t *testing.T) {
		err := database.UpdateArticleStatus(ctx, uuid.New().String(), article.StatusPosted)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("RecentTopicsAndTitles", func(t *testing.T) {
		topics, err := database.RecentTopics(ctx, 50)
		require.NoError(t, err)
		assert.Contains(t, topics, draft.Topic)

		titles, err := database.RecentTitles(ctx, 50)
		require.NoError(t, err)
		assert.Contains(t, titles, draft.Strategy.Title)
	})

	t.Run("ListRecentArticles", func(t *testing.T) {
		drafts, err := database.ListRecentArticles(ctx, 50)
		require.NoError(t, err)

		found := false
		for _, d := range drafts {
			if d.ID == id {
				found = true
			}
		}
		assert.True(t, found, "upserted article should appear in recent list")
	})

	t.Run("GetArticleUnknownID", func(t *testing.T) {
		_, err := database.GetArticle(ctx, uuid.New().String())
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("MonthlyReports", func(t *testing.T) {
		month := "1999-01"
		report := &article.MonthlyReport{
			Month:      month,
			CreatedAt:  time.Now().UTC(),
			Metrics:    "views: 0",
			Analysis:   "quiet month",
			Highlights: []string{"nothing happened"},
		}
		require.NoError(t, database.UpsertMonthlyReport(ctx, report))
		t.Cleanup(func() {
			_, err := database.pool.Exec(context.Background(), `DELETE FROM monthly_reports WHERE month = $1`, month)
			assert.NoError(t, err)
		})

		loaded, err := database.GetMonthlyReport(ctx, month)
		require.NoError(t, err)
		assert.Equal(t, report.Analysis, loaded.Analysis)
		assert.Equal(t, report.Highlights, loaded.Highlights)

		report.Analysis = "revised analysis"
		require.NoError(t, database.UpsertMonthlyReport(ctx, report))
		loaded, err = database.GetMonthlyReport(ctx, month)
		require.NoError(t, err)
		assert.Equal(t, "revised analysis", loaded.Analysis)

		_, err = database.GetMonthlyReport(ctx, "1998-12")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
