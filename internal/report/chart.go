// Package report renders run output: horizontal bar charts written as PNG
// files and console tables.
package report

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Chart file names under the output directory.
const (
	DetectionsChart = "# of Misinformation URLs found per Subreddit.png"
	PostersChart    = "# of MisInfo Posters per Subreddit.png"
)

// UsersChart returns the file name of the top-n posters chart.
func UsersChart(n int) string {
	return "Top " + itoa(n) + " Users Posting Most Misinformation URLs.png"
}

// ErrNoData is returned when a chart has no bars to draw.
var ErrNoData = eris.New("report: no data to plot")

// Bar is one labelled value of a bar chart.
type Bar struct {
	Label string
	Value float64
}

// Chart describes a horizontal bar chart.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Bars   []Bar
}

// Save renders c as a PNG at path, creating parent directories. Bars are
// drawn bottom to top in slice order.
func (c Chart) Save(path string) error {
	if len(c.Bars) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.X.Min = 0

	values := make(plotter.Values, len(c.Bars))
	labels := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		values[i] = b.Value
		labels[i] = b.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return eris.Wrap(err, "report: build bar chart")
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalY(labels...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "report: create dir for %s", path)
	}

	height := vg.Length(len(c.Bars))*vg.Points(20) + 2*vg.Inch
	if err := p.Save(8*vg.Inch, height, path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
