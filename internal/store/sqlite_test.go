package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/misinfo-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_RunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	run, err := s.CreateRun(ctx, model.RunModeCollect)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NotEmpty(t, run.ID)

	result := &model.RunResult{
		Lookback:          model.LookbackMonth,
		Collections:       3,
		Fetched:           10,
		Written:           8,
		Detected:          2,
		FailedCollections: []string{"private"},
		DomainCounts:      map[string]int{"fake-news.example": 2},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, model.RunModeCollect, got.Mode)
	require.NotNil(t, got.Result)
	assert.Equal(t, *result, *got.Result)
	assert.Empty(t, got.Error)
}

func TestSQLite_FailRun(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	run, err := s.CreateRun(ctx, model.RunModeExpand)
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, errors.New("sheets: unexpected status 403"), nil))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "sheets: unexpected status 403", got.Error)
	assert.Nil(t, got.Result)
}

func TestSQLite_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	_, err := s.GetRun(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.CompleteRun(ctx, "missing", &model.RunResult{}), ErrNotFound))
}

func TestSQLite_ListRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	a, err := s.CreateRun(ctx, model.RunModeCollect)
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, model.RunModeExpand)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, &model.RunResult{Written: 1}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	collect, err := s.ListRuns(ctx, RunFilter{Mode: model.RunModeCollect})
	require.NoError(t, err)
	require.Len(t, collect, 1)
	assert.Equal(t, a.ID, collect[0].ID)

	running, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, model.RunModeExpand, running[0].Mode)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	_, err = s.CreateRun(ctx, model.RunModeCollect)
	require.NoError(t, err)

	_, err = Open(ctx, "mysql", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
