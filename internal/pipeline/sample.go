package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/report"
)

// Sample tallies Detected records per subreddit in the local sample file,
// prints the tally and charts it. It touches no network service.
func (e *Env) Sample(_ context.Context) ([]report.Count, error) {
	path := e.Config.Collect.SamplePath
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open sample %s", path)
	}
	defer f.Close() //nolint:errcheck

	records, err := model.ReadRecordsCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read sample %s", path)
	}

	counts := report.TallyDetections(records)
	zap.L().Info("sample tallied",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("subreddits", len(counts)),
	)

	fmt.Fprintln(e.out(), "# of Misinformation URLs found per Subreddit")
	report.WriteCounts(e.out(), "Subreddit", "Misinformation URLs", counts)

	e.chart(report.Chart{
		Title:  "# of Misinformation URLs found per Subreddit",
		XLabel: "Misinformation URLs",
		Bars:   report.Bars(counts),
	}, report.DetectionsChart)

	return counts, nil
}

// chart saves c under the output directory. Failures are logged only.
func (e *Env) chart(c report.Chart, name string) {
	path := e.outputPath(name)
	err := c.Save(path)
	switch {
	case errors.Is(err, report.ErrNoData):
		zap.L().Info("nothing to chart", zap.String("chart", name))
	case err != nil:
		zap.L().Warn("chart failed", zap.String("chart", name), zap.Error(err))
	default:
		zap.L().Info("chart written", zap.String("path", path))
	}
}
