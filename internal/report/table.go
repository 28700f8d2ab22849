package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// NewTable returns a rounded table writer mirrored to w.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// WriteCounts prints counts under the given column headers.
func WriteCounts(w io.Writer, labelHeader, countHeader string, counts []Count) {
	t := NewTable(w)
	t.AppendHeader(table.Row{labelHeader, countHeader})
	total := 0
	for _, c := range counts {
		t.AppendRow(table.Row{c.Label, c.Count})
		total += c.Count
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}

// WriteCandidates prints network candidates.
func WriteCandidates(w io.Writer, cands []model.NetworkCandidate) {
	t := NewTable(w)
	t.AppendHeader(table.Row{"Subreddit", "Association Count", "MisInfo Posters"})
	for _, c := range cands {
		t.AppendRow(table.Row{c.Subreddit, c.AssociationCount, c.Posters})
	}
	t.Render()
}

// WriteRuns prints a run ledger listing.
func WriteRuns(w io.Writer, runs []model.Run) {
	t := NewTable(w)
	t.AppendHeader(table.Row{"ID", "Mode", "Status", "Written", "Detected", "Failed", "Created"})
	for _, r := range runs {
		written, detected, failed := "-", "-", "-"
		if r.Result != nil {
			written = strconv.Itoa(r.Result.Written)
			detected = strconv.Itoa(r.Result.Detected)
			failed = strconv.Itoa(len(r.Result.FailedCollections))
		}
		t.AppendRow(table.Row{
			r.ID, r.Mode, r.Status, written, detected, failed,
			r.CreatedAt.UTC().Format(model.DateLayout),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", fmt.Sprintf("%d run(s)", len(runs))})
	t.Render()
}
