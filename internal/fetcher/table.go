package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the index of the named column, matched
// case-insensitively, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Column returns every value of the named column. ok is false when the
// header has no such column.
func (t *Table) Column(name string) (values []string, ok bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	for _, row := range t.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}
	return values, true
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// OpenTable reads a table from a local path or, when f is non-nil, from an
// http(s) URL. The format follows the extension: .xlsx is read as a
// workbook, .tsv as tab-separated, anything else as comma-separated.
// Missing local files return an error satisfying os.IsNotExist via
// errors.Is(err, os.ErrNotExist).
func OpenTable(ctx context.Context, f Fetcher, src string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(strings.SplitN(src, "?", 2)[0]))

	if ext == ".xlsx" {
		if IsRemote(src) {
			return nil, eris.Errorf("fetcher: remote xlsx is not supported: %s", src)
		}
		if _, err := os.Stat(src); err != nil {
			return nil, eris.Wrapf(err, "fetcher: stat %s", src)
		}
		return ReadXLSX(src, XLSXOptions{})
	}

	var r io.ReadCloser
	if IsRemote(src) {
		if f == nil {
			return nil, eris.Errorf("fetcher: no http fetcher for %s", src)
		}
		body, err := f.Download(ctx, src)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: download %s", src)
		}
		r = body
	} else {
		file, err := os.Open(src)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", src)
		}
		r = file
	}
	defer r.Close() //nolint:errcheck

	opts := CSVOptions{LazyQuotes: true, TrimSpace: true}
	if ext == ".tsv" || strings.Contains(src, "format=tsv") {
		opts.Delimiter = '\t'
	}
	return ReadCSV(ctx, r, opts)
}
