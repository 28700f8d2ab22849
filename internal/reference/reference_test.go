package reference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewSet(t *testing.T) {
	s := NewSet(" Fake-News.example ", "", "other.example", "fake-news.example")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("FAKE-NEWS.EXAMPLE"))
	assert.False(t, s.Contains("real.example"))
	assert.Equal(t, []string{"fake-news.example", "other.example"}, s.sorted())
}

func TestSet_Nil(t *testing.T) {
	var s *Set
	assert.False(t, s.Contains("x"))
	assert.Zero(t, s.Len())
	assert.Nil(t, s.sorted())
}

func TestLoad_TSV(t *testing.T) {
	path := writeFile(t, "iffy.tsv", "Name\tdomain\tScore\nFake\tFake-News.example\t0.1\nBlank\t\t\n")

	s, err := Load(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fake-news.example"}, s.sorted())
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "iffy.csv", "Domain\na.example\nb.example\n")

	s, err := Load(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), nil, filepath.Join(t.TempDir(), "missing.tsv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestLoad_EmptySource(t *testing.T) {
	_, err := Load(context.Background(), nil, "")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestLoad_NoDomainColumn(t *testing.T) {
	path := writeFile(t, "bad.tsv", "Name\tScore\nx\t1\n")

	_, err := Load(context.Background(), nil, path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "Domain")
}
