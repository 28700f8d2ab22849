// Package sheet stores tables of rows in named sheets of a spreadsheet and
// appends batches to them with retry.
package sheet

import (
	"context"
	"errors"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/misinfo-cli/pkg/sheets"
)

// ErrNotFound is returned when reading a sheet that does not exist.
var ErrNotFound = sheets.ErrSheetNotFound

// Table reads and writes rows of named sheets. Row numbers are 1-based,
// as displayed by spreadsheet applications.
type Table interface {
	// Read returns every non-empty row of the sheet, header included.
	Read(ctx context.Context, sheet string) ([][]string, error)
	// Write writes rows starting at column A of row, overwriting cells.
	Write(ctx context.Context, sheet string, row int, rows [][]string) error
	// Replace clears the sheet and writes rows from A1.
	Replace(ctx context.Context, sheet string, rows [][]string) error
	// Ensure creates the sheet if it does not exist.
	Ensure(ctx context.Context, sheet string) error
}

// Google is a Table backed by a Google Sheets spreadsheet.
type Google struct {
	client        sheets.Client
	spreadsheetID string
}

// NewGoogle creates a Table over one spreadsheet.
func NewGoogle(client sheets.Client, spreadsheetID string) *Google {
	return &Google{client: client, spreadsheetID: spreadsheetID}
}

// Read implements Table.
func (g *Google) Read(ctx context.Context, sheet string) ([][]string, error) {
	rows, err := g.client.GetValues(ctx, g.spreadsheetID, sheets.A1(sheet, 0))
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: read %s", sheet)
	}
	return rows, nil
}

// Write implements Table.
func (g *Google) Write(ctx context.Context, sheet string, row int, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return eris.Wrapf(g.client.UpdateValues(ctx, g.spreadsheetID, sheets.A1(sheet, max(row, 1)), rows),
		"sheet: write %s at row %d", sheet, row)
}

// Replace implements Table.
func (g *Google) Replace(ctx context.Context, sheet string, rows [][]string) error {
	if err := g.client.ClearValues(ctx, g.spreadsheetID, sheets.A1(sheet, 0)); err != nil {
		return eris.Wrapf(err, "sheet: clear %s", sheet)
	}
	return g.Write(ctx, sheet, 1, rows)
}

// Ensure implements Table.
func (g *Google) Ensure(ctx context.Context, sheet string) error {
	titles, err := g.client.SheetTitles(ctx, g.spreadsheetID)
	if err != nil {
		return eris.Wrap(err, "sheet: list sheets")
	}
	if slices.Contains(titles, sheet) {
		return nil
	}
	return eris.Wrapf(g.client.AddSheet(ctx, g.spreadsheetID, sheet), "sheet: create %s", sheet)
}

// IsNotFound reports whether err means the sheet does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
