package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/defano/chicago-oasis-data/internal/db"
	"github.com/defano/chicago-oasis-data/internal/model"
)

// PostgresStore implements Store on a Postgres pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres wraps an open pool. Close closes the pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS category_runs (
	id           TEXT PRIMARY KEY,
	category     TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'running',
	years        INTEGER NOT NULL DEFAULT 0,
	files        INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_category_runs_category ON category_runs(category, status);
CREATE INDEX IF NOT EXISTS idx_category_runs_started_at ON category_runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Start(ctx context.Context, category, description string) (*model.CategoryRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO category_runs (id, category, description, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, category, description, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run for category %s", category)
	}

	return &model.CategoryRun{
		ID:          id,
		Category:    category,
		Description: description,
		Status:      model.RunStatusRunning,
		StartedAt:   now,
	}, nil
}

func (s *PostgresStore) Complete(ctx context.Context, id string, years, files int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE category_runs SET status = $1, years = $2, files = $3, completed_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), years, files, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) Fail(ctx context.Context, id string, cause error) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE category_runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), errorText(cause), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) IsComplete(ctx context.Context, category string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM category_runs WHERE category = $1 AND status = $2)`,
		category, string(model.RunStatusComplete),
	).Scan(&ok)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: check category %s", category)
	}
	return ok, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]model.CategoryRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, category, description, status, years, files, error, started_at, completed_at
		 FROM category_runs ORDER BY started_at DESC, category LIMIT $1`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.CategoryRun
	for rows.Next() {
		var (
			r      model.CategoryRun
			status string
		)
		if err := rows.Scan(&r.ID, &r.Category, &r.Description, &status, &r.Years, &r.Files, &r.Error, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
