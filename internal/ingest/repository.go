package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the run ledger.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
}

// NopRepo discards runs. Used when no ledger database is configured.
type NopRepo struct{}

func (NopRepo) CreateRun(context.Context, *Run) error { return nil }
func (NopRepo) UpdateRun(context.Context, *Run) error { return nil }

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const sql = `
		INSERT INTO sync_runs (id, kind, status, started_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, sql, run.ID, string(run.Kind), string(run.Status), run.StartedAt)
	return err
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE sync_runs SET
			finished_at = $1,
			status = $2,
			seen = $3,
			created = $4,
			updated = $5,
			skipped = $6,
			failed = $7,
			failures = $8,
			error = $9
		WHERE id = $10`

	failures, err := json.Marshal(run.Failures)
	if err != nil {
		return fmt.Errorf("encode failures: %w", err)
	}
	_, err = r.db.Exec(ctx, sql,
		run.FinishedAt, string(run.Status),
		run.Tally.Seen, run.Tally.Created, run.Tally.Updated, run.Tally.Skipped, run.Tally.Failed,
		failures, run.Error, run.ID,
	)
	return err
}

// GetRun reads one run back.
func (r *PostgresRepo) GetRun(ctx context.Context, id string) (*Run, error) {
	const sql = `
		SELECT id, kind, status, started_at, finished_at,
			seen, created, updated, skipped, failed, failures, error
		FROM sync_runs WHERE id = $1`

	var (
		run      Run
		kind     string
		status   string
		failures []byte
	)
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&run.ID, &kind, &status, &run.StartedAt, &run.FinishedAt,
		&run.Tally.Seen, &run.Tally.Created, &run.Tally.Updated, &run.Tally.Skipped, &run.Tally.Failed,
		&failures, &run.Error,
	)
	if err != nil {
		return nil, err
	}
	run.Kind, run.Status = Kind(kind), Status(status)
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &run.Failures); err != nil {
			return nil, fmt.Errorf("decode failures: %w", err)
		}
	}
	return &run, nil
}
