package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS extraction_run (
	id TEXT PRIMARY KEY,
	source_name TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS extraction_amount (
	run_id TEXT NOT NULL REFERENCES extraction_run(id) ON DELETE CASCADE,
	amount_type TEXT NOT NULL,
	amount_value REAL NOT NULL,
	source_text TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_extraction_amount_run ON extraction_amount(run_id);
`

// LocalStore is the sqlite-backed run store used by the CLI, so one-shot
// extractions can be kept without a Postgres instance.
type LocalStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ RunRepository = (*LocalStore)(nil)

func OpenLocal(path string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if _, err := db.Exec(localSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap local store: %w", err)
	}
	logger.Debug("local store opened", "path", path)
	return &LocalStore{db: db, logger: logger}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) SaveRun(ctx context.Context, run Run, amounts []RunAmount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO extraction_run (id, source_name, currency, status, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.SourceName, run.Currency, run.Status, run.Confidence,
		run.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, a := range amounts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO extraction_amount (run_id, amount_type, amount_value, source_text)
			 VALUES (?, ?, ?, ?)`,
			run.ID.String(), a.Type, a.Value, a.Source)
		if err != nil {
			return fmt.Errorf("insert amount: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("run saved", "run_id", run.ID, "amounts", len(amounts))
	return nil
}

func (s *LocalStore) ListRuns(ctx context.Context, from, to *time.Time) ([]Run, error) {
	q := `SELECT id, source_name, currency, status, confidence, created_at FROM extraction_run`
	var args []any
	if from != nil {
		q += " WHERE created_at >= ?"
		args = append(args, from.UTC().Format(time.RFC3339Nano))
	}
	if to != nil {
		if from != nil {
			q += " AND created_at <= ?"
		} else {
			q += " WHERE created_at <= ?"
		}
		args = append(args, to.UTC().Format(time.RFC3339Nano))
	}
	q += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var id, created string
		if err := rows.Scan(&id, &run.SourceName, &run.Currency, &run.Status, &run.Confidence, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *LocalStore) ListAmounts(ctx context.Context, runID uuid.UUID) ([]RunAmount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT amount_type, amount_value, source_text FROM extraction_amount WHERE run_id = ?`,
		runID.String())
	if err != nil {
		return nil, fmt.Errorf("query amounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var amounts []RunAmount
	for rows.Next() {
		a := RunAmount{RunID: runID}
		if err := rows.Scan(&a.Type, &a.Value, &a.Source); err != nil {
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		amounts = append(amounts, a)
	}
	return amounts, rows.Err()
}
