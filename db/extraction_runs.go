/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunOutcome summarizes how an upload ended
type RunOutcome string

const (
	RunMerged            RunOutcome = "merged"
	RunNoData            RunOutcome = "no_data"
	RunInvalidExtraction RunOutcome = "invalid_extraction"
	RunUpstreamError     RunOutcome = "upstream_error"
)

// SkippedEntry is a biomarker left out of a merge
type SkippedEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ExtractionRun is one audited dashboard upload. Only metadata is kept;
// biomarker values are never stored.
type ExtractionRun struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	SessionID      string         `db:"session_id" json:"-"`
	Filename       string         `db:"filename" json:"filename"`
	Outcome        RunOutcome     `db:"outcome" json:"outcome"`
	ReportDate     *time.Time     `db:"report_date" json:"reportDate,omitempty"`
	Applied        []string       `db:"applied" json:"applied"`
	Skipped        []SkippedEntry `db:"skipped" json:"skipped"`
	UpstreamStatus int            `db:"upstream_status" json:"upstreamStatus"`
	DurationMS     int64          `db:"duration_ms" json:"durationMs"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// RecordExtractionRunInput holds the fields of a new audit row
type RecordExtractionRunInput struct {
	SessionID      string
	Filename       string
	Outcome        RunOutcome
	ReportDate     *time.Time
	Applied        []string
	Skipped        []SkippedEntry
	UpstreamStatus int
	Duration       time.Duration
}

// RecordExtractionRun stores an audit row and returns its ID.
func RecordExtractionRun(ctx context.Context, input RecordExtractionRunInput) (uuid.UUID, error) {
	if pool == nil {
		return uuid.Nil, ErrDatabaseConnectionNotInitialized
	}
	if input.SessionID == "" {
		return uuid.Nil, ErrSessionIDRequired
	}

	applied := input.Applied
	if applied == nil {
		applied = []string{}
	}

	skipped := input.Skipped
	if skipped == nil {
		skipped = []SkippedEntry{}
	}

	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode skipped biomarkers: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO extraction_runs (id, session_id, filename, outcome, report_date, applied, skipped, upstream_status, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)
	`

	_, err = pool.Exec(ctx, query,
		id, input.SessionID, input.Filename, string(input.Outcome), input.ReportDate,
		applied, string(skippedJSON), input.UpstreamStatus, input.Duration.Milliseconds(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record extraction run: %w", err)
	}

	return id, nil
}

// ListExtractionRuns returns the most recent runs of a session, newest first.
func ListExtractionRuns(ctx context.Context, sessionID string, limit int) ([]ExtractionRun, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, session_id, filename, outcome, report_date, applied, skipped, upstream_status, duration_ms, created_at
		FROM extraction_runs
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list extraction runs: %w", err)
	}
	defer rows.Close()

	runs := []ExtractionRun{}
	for rows.Next() {
		var (
			run     ExtractionRun
			outcome string
			skipped []byte
		)

		err := rows.Scan(
			&run.ID, &run.SessionID, &run.Filename, &outcome, &run.ReportDate,
			&run.Applied, &skipped, &run.UpstreamStatus, &run.DurationMS, &run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction run: %w", err)
		}

		run.Outcome = RunOutcome(outcome)
		if err := json.Unmarshal(skipped, &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to decode skipped biomarkers: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction runs: %w", err)
	}

	return runs, nil
}

// PruneExtractionRuns deletes runs older than the cutoff and returns how
// many were removed.
func PruneExtractionRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	if pool == nil {
		return 0, ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM extraction_runs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune extraction runs: %w", err)
	}

	return tag.RowsAffected(), nil
}
