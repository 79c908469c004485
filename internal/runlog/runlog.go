// Package runlog records which license categories have been generated, so an
// interrupted run can be resumed and its state inspected.
package runlog

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/defano/chicago-oasis-data/internal/config"
	"github.com/defano/chicago-oasis-data/internal/db"
	"github.com/defano/chicago-oasis-data/internal/model"
)

// Driver names a Store implementation.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverNone     Driver = "none"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Store is the category run ledger. A category counts as generated only once
// Complete has been recorded for it, after all of its files were written.
type Store interface {
	Start(ctx context.Context, category, description string) (*model.CategoryRun, error)
	Complete(ctx context.Context, id string, years, files int) error
	Fail(ctx context.Context, id string, cause error) error
	IsComplete(ctx context.Context, category string) (bool, error)
	List(ctx context.Context, limit int) ([]model.CategoryRun, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the ledger selected by configuration and migrates it.
func Open(ctx context.Context, cfg config.RunlogConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch Driver(cfg.Driver) {
	case DriverSQLite, "":
		st, err = NewSQLite(cfg.DatabaseURL)
	case DriverPostgres:
		var pool db.Pool
		pool, err = db.Open(ctx, cfg.DatabaseURL, nil)
		if err == nil {
			st = NewPostgres(pool)
		}
	case DriverNone:
		return Nop{}, nil
	default:
		return nil, eris.Errorf("runlog: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func errorText(cause error) string {
	if cause == nil {
		return ""
	}
	return cause.Error()
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
