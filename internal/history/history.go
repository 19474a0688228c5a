// Package history keeps an audit trail of past runs in SQLite: one row per
// run with its counters, one row per account outcome. Failures here are
// never allowed to affect a run's outcomes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"dmdraft/internal/outreach"

	_ "modernc.org/sqlite"
)

// Store wraps the history database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open initializes the SQLite database at the given path.
func Open(path string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		drafted INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		row_index INTEGER NOT NULL,
		username TEXT NOT NULL,
		status TEXT NOT NULL,
		detail TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("history: initialize schema: %w", err)
	}
	return nil
}

// RecordRun persists one completed run and all of its outcomes.
func (s *Store) RecordRun(ctx context.Context, startedAt, finishedAt time.Time, dryRun bool, stats *outreach.Stats) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, dry_run, drafted, skipped, errors) VALUES (?, ?, ?, ?, ?, ?)`,
		startedAt.Unix(), finishedAt.Unix(), dryRun, stats.Drafted, stats.Skipped, stats.Errors)
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: run id: %w", err)
	}

	for _, out := range stats.Outcomes {
		detail := out.Message
		switch out.Status {
		case outreach.OutcomeSkipped:
			detail = out.Reason
		case outreach.OutcomeFailed:
			detail = out.Err
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO outcomes (run_id, row_index, username, status, detail) VALUES (?, ?, ?, ?, ?)`,
			runID, out.RowIndex, out.Username, string(out.Status), detail); err != nil {
			return runID, fmt.Errorf("history: insert outcome for %s: %w", out.Username, err)
		}
	}
	return runID, nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Drafted    int
	Skipped    int
	Errors     int
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, drafted, skipped, errors
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r                 RunSummary
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.DryRun, &r.Drafted, &r.Skipped, &r.Errors); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Outcomes returns the recorded outcomes for one run, in processing order.
func (s *Store) Outcomes(ctx context.Context, runID int64) ([]outreach.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_index, username, status, detail FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query outcomes: %w", err)
	}
	defer rows.Close()

	var out []outreach.Outcome
	for rows.Next() {
		var (
			o      outreach.Outcome
			status string
			detail string
		)
		if err := rows.Scan(&o.RowIndex, &o.Username, &status, &detail); err != nil {
			return nil, fmt.Errorf("history: scan outcome: %w", err)
		}
		o.Status = outreach.OutcomeStatus(status)
		switch o.Status {
		case outreach.OutcomeDrafted:
			o.Message = detail
		case outreach.OutcomeSkipped:
			o.Reason = detail
		case outreach.OutcomeFailed:
			o.Err = detail
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
