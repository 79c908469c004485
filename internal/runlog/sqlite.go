package runlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/defano/chicago-oasis-data/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS category_runs (
	id           TEXT PRIMARY KEY,
	category     TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'running',
	years        INTEGER NOT NULL DEFAULT 0,
	files        INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_category_runs_category ON category_runs(category, status);
CREATE INDEX IF NOT EXISTS idx_category_runs_started_at ON category_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Start(ctx context.Context, category, description string) (*model.CategoryRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO category_runs (id, category, description, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, category, description, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run for category %s", category)
	}

	return &model.CategoryRun{
		ID:          id,
		Category:    category,
		Description: description,
		Status:      model.RunStatusRunning,
		StartedAt:   now,
	}, nil
}

func (s *SQLiteStore) Complete(ctx context.Context, id string, years, files int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE category_runs SET status = ?, years = ?, files = ?, completed_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), years, files, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) Fail(ctx context.Context, id string, cause error) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE category_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), errorText(cause), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) IsComplete(ctx context.Context, category string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM category_runs WHERE category = ? AND status = ?`,
		category, string(model.RunStatusComplete),
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: check category %s", category)
	}
	return n > 0, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]model.CategoryRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, description, status, years, files, error, started_at, completed_at
		 FROM category_runs ORDER BY started_at DESC, category LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.CategoryRun
	for rows.Next() {
		var (
			r         model.CategoryRun
			status    string
			completed sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Category, &r.Description, &status, &r.Years, &r.Files, &r.Error, &r.StartedAt, &completed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", id)
	}
	return nil
}
