package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/recipepocket/content-agent/internal/article"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UpsertArticle stores the full draft keyed by its id: create if absent, else
// overwrite. Safe to retry.
func (db *DB) UpsertArticle(ctx context.Context, draft *article.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal article %s: %w", draft.ID, err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO articles (id, topic, title, status, payload, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET topic = $2, title = $3, status = $4, payload = $5, updated_at = NOW()`,
		draft.ID, draft.Topic, draft.Title(), string(draft.Status), payload, draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", draft.ID, err)
	}
	return nil
}

// UpdateArticleStatus performs a partial, idempotent status update. The JSON
// payload is patched as well so reads from either column agree.
func (db *DB) UpdateArticleStatus(ctx context.Context, id string, status article.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid article status %q", status)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE articles
		 SET status = $2,
		     payload = jsonb_set(payload, '{status}', to_jsonb($2::text)),
		     updated_at = NOW()
		 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to update status for article %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetArticle loads one draft by id.
func (db *DB) GetArticle(ctx context.Context, id string) (*article.Draft, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM articles WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load article %s: %w", id, err)
	}

	var draft article.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode article %s: %w", id, err)
	}
	return &draft, nil
}

// ListRecentArticles returns the most recently updated drafts, newest first.
// Used both by the API and as prompt history context.
func (db *DB) ListRecentArticles(ctx context.Context, limit int) ([]article.Draft, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.pool.Query(ctx,
		`SELECT payload FROM articles ORDER BY updated_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var drafts []article.Draft
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		var draft article.Draft
		if err := json.Unmarshal(payload, &draft); err != nil {
			return nil, fmt.Errorf("failed to decode article row: %w", err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

// RecentTopics returns the topics of the most recent articles, used for the
// analyst's avoid-list and the duplicate-topic guard.
func (db *DB) RecentTopics(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.pool.Query(ctx,
		`SELECT topic FROM articles WHERE topic <> '' ORDER BY updated_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("failed to scan topic row: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// RecentTitles returns the titles of the most recent articles for the
// marketer's duplicate-title avoidance.
func (db *DB) RecentTitles(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.pool.Query(ctx,
		`SELECT title FROM articles WHERE title <> '' ORDER BY updated_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title row: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}
