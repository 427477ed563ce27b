package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/recipepocket/content-agent/internal/article"
)

// UpsertMonthlyReport stores one calendar month's report, keyed by the month
// string ("YYYY-MM"). Same idempotent contract as articles: create or
// overwrite, safe to retry.
func (db *DB) UpsertMonthlyReport(ctx context.Context, report *article.MonthlyReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal monthly report %s: %w", report.Month, err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO monthly_reports (month, payload, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (month) DO UPDATE SET payload = $2, created_at = NOW()`,
		report.Month, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly report %s: %w", report.Month, err)
	}
	return nil
}

// GetMonthlyReport loads the report for one month key.
func (db *DB) GetMonthlyReport(ctx context.Context, month string) (*article.MonthlyReport, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM monthly_reports WHERE month = $1`, month,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("monthly report %s: %w", month, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly report %s: %w", month, err)
	}

	var report article.MonthlyReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode monthly report %s: %w", month, err)
	}
	return &report, nil
}
