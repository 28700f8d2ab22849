package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"iter"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// CSVRows yields rows from r one at a time. Iteration stops at the first
// read error, which is yielded with a nil row, or when ctx is done.
func CSVRows(ctx context.Context, r io.Reader, opts CSVOptions) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				yield(nil, eris.Wrap(ctx.Err(), "csv: context cancelled"))
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, eris.Wrap(err, "csv: read row"))
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			if !yield(record, nil) {
				return
			}
		}
	}
}

// ReadCSV reads every row of r. The first row is returned as the header.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*Table, error) {
	t := &Table{}
	first := true
	for row, err := range CSVRows(ctx, r, opts) {
		if err != nil {
			return nil, err
		}
		if first {
			t.Header = row
			first = false
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
