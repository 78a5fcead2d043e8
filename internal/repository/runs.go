package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run is a persisted pipeline invocation.
type Run struct {
	ID         uuid.UUID
	SourceName string
	Currency   string
	Status     string
	Confidence float64
	CreatedAt  time.Time
}

// RunAmount is one classified amount belonging to a run.
type RunAmount struct {
	RunID  uuid.UUID
	Type   string
	Value  float64
	Source string
}

// RunRepository stores pipeline runs and their classified amounts.
type RunRepository interface {
	SaveRun(ctx context.Context, run Run, amounts []RunAmount) error
	ListRuns(ctx context.Context, from, to *time.Time) ([]Run, error)
	ListAmounts(ctx context.Context, runID uuid.UUID) ([]RunAmount, error)
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS extraction_run (
	id UUID PRIMARY KEY,
	source_name TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS extraction_amount (
	run_id UUID NOT NULL REFERENCES extraction_run(id) ON DELETE CASCADE,
	amount_type TEXT NOT NULL,
	amount_value DOUBLE PRECISION NOT NULL,
	source_text TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_extraction_amount_run ON extraction_amount(run_id);
`

type PGRunRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ RunRepository = (*PGRunRepository)(nil)

func NewPGRunRepository(pool *pgxpool.Pool, logger *slog.Logger) *PGRunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGRunRepository{pool: pool, logger: logger}
}

// EnsureSchema bootstraps the tables on daemon startup; idempotent.
func (r *PGRunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PGRunRepository) SaveRun(ctx context.Context, run Run, amounts []RunAmount) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO extraction_run (id, source_name, currency, status, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID.String(), run.SourceName, run.Currency, run.Status, run.Confidence, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, a := range amounts {
		_, err = tx.Exec(ctx,
			`INSERT INTO extraction_amount (run_id, amount_type, amount_value, source_text)
			 VALUES ($1, $2, $3, $4)`,
			run.ID.String(), a.Type, a.Value, a.Source)
		if err != nil {
			return fmt.Errorf("insert amount: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("run saved", "run_id", run.ID, "amounts", len(amounts))
	return nil
}

func (r *PGRunRepository) ListRuns(ctx context.Context, from, to *time.Time) ([]Run, error) {
	q := `SELECT id, source_name, currency, status, confidence, created_at FROM extraction_run`
	var args []any
	if from != nil {
		args = append(args, *from)
		q += fmt.Sprintf(" WHERE created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			q += fmt.Sprintf(" AND created_at <= $%d", len(args))
		} else {
			q += fmt.Sprintf(" WHERE created_at <= $%d", len(args))
		}
	}
	q += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var id string
		if err := rows.Scan(&id, &run.SourceName, &run.Currency, &run.Status, &run.Confidence, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *PGRunRepository) ListAmounts(ctx context.Context, runID uuid.UUID) ([]RunAmount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT amount_type, amount_value, source_text FROM extraction_amount WHERE run_id = $1`,
		runID.String())
	if err != nil {
		return nil, fmt.Errorf("query amounts: %w", err)
	}
	defer rows.Close()

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
