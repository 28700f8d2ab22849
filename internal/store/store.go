// Package store is the run ledger: one row per CLI invocation with its mode,
// status and result summary.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Mode   model.RunMode   `json:"mode,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the run ledger.
type Store interface {
	CreateRun(ctx context.Context, mode model.RunMode) (*model.Run, error)
	// CompleteRun stores the result and marks the run complete.
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	// FailRun stores the error and any partial result and marks the run
	// failed.
	FailRun(ctx context.Context, runID string, runErr error, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the ledger for driver "sqlite" (default) or
// "postgres" and applies migrations.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(driver) {
	case "", "sqlite":
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func listLimit(filter RunFilter) int {
	if filter.Limit <= 0 {
		return 100
	}
	return filter.Limit
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
