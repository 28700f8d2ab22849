package sheet

import (
	"context"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Workbook is a Table backed by a local .xlsx file with the same sheet
// layout as the online spreadsheet. Every write rewrites the file.
type Workbook struct {
	path string

	mu     sync.Mutex
	order  []string
	sheets map[string][][]string
}

// OpenWorkbook loads path, or starts an empty workbook when the file does
// not exist yet.
func OpenWorkbook(path string) (*Workbook, error) {
	w := &Workbook{path: path, sheets: make(map[string][][]string)}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return w, nil
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: open workbook %s", path)
	}
	for _, s := range f.Sheets {
		var rows [][]string
		for _, row := range s.Rows {
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = c.String()
			}
			rows = append(rows, cells)
		}
		w.order = append(w.order, s.Name)
		w.sheets[s.Name] = trimEmpty(rows)
	}
	return w, nil
}

// Path returns the workbook file path.
func (w *Workbook) Path() string { return w.path }

// Read implements Table. Trailing empty rows are dropped.
func (w *Workbook) Read(_ context.Context, sheet string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "sheet: read %s", sheet)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range trimEmpty(rows) {
		out = append(out, append([]string(nil), r...))
	}
	return out, nil
}

// Write implements Table.
func (w *Workbook) Write(_ context.Context, sheet string, row int, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ensure(sheet)
	data := w.sheets[sheet]
	start := max(row, 1) - 1
	for len(data) < start+len(rows) {
		data = append(data, nil)
	}
	for i, r := range rows {
		data[start+i] = overlay(data[start+i], r)
	}
	w.sheets[sheet] = data
	return w.save()
}

// Replace implements Table.
func (w *Workbook) Replace(_ context.Context, sheet string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ensure(sheet)
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = append([]string(nil), r...)
	}
	w.sheets[sheet] = data
	return w.save()
}

// Ensure implements Table.
func (w *Workbook) Ensure(_ context.Context, sheet string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.sheets[sheet]; ok {
		return nil
	}
	w.ensure(sheet)
	return w.save()
}

func (w *Workbook) ensure(sheet string) {
	if _, ok := w.sheets[sheet]; !ok {
		w.order = append(w.order, sheet)
		w.sheets[sheet] = nil
	}
}

func (w *Workbook) save() error {
	f := xlsx.NewFile()
	for _, name := range w.order {
		s, err := f.AddSheet(name)
		if err != nil {
			return eris.Wrapf(err, "sheet: add sheet %s", name)
		}
		for _, r := range w.sheets[name] {
			row := s.AddRow()
			for _, v := range r {
				row.AddCell().SetString(v)
			}
		}
	}
	return eris.Wrapf(f.Save(w.path), "sheet: save workbook %s", w.path)
}

// overlay writes src over dst cell by cell, like a range update.
func overlay(dst, src []string) []string {
	out := append([]string(nil), dst...)
	for len(out) < len(src) {
		out = append(out, "")
	}
	copy(out, src)
	return out
}

func isEmptyRow(r []string) bool {
	for _, c := range r {
		if c != "" {
			return false
		}
	}
	return true
}

func trimEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isEmptyRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}
