package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/acquire"
	"github.com/sells-group/misinfo-cli/internal/classify"
	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/reference"
	"github.com/sells-group/misinfo-cli/internal/report"
	"github.com/sells-group/misinfo-cli/internal/sheet"
)

// Collect fetches new submissions for every tracked subreddit, classifies
// them against the domain reference and appends them to the data sheet.
// On an aborted fetch the partial result is returned with the error and
// nothing is written.
func (e *Env) Collect(ctx context.Context) (*model.RunResult, error) {
	start := time.Now()
	cfg := e.Config
	res := &model.RunResult{}

	ref, err := reference.Load(ctx, e.Files, cfg.Collect.ReferencePath)
	if err != nil {
		return res, err
	}

	trackingRows, err := e.Table.Read(ctx, cfg.Sheets.TrackingSheet)
	if err != nil {
		return res, eris.Wrapf(err, "pipeline: read tracking sheet %s", cfg.Sheets.TrackingSheet)
	}
	collections := acquire.UniqueCollections(model.ParseTracking(trackingRows))
	res.Collections = len(collections)
	if len(collections) == 0 {
		zap.L().Warn("no subreddits tracked", zap.String("sheet", cfg.Sheets.TrackingSheet))
	}

	dataRows, err := e.readSheet(ctx, cfg.Sheets.DataSheet)
	if err != nil {
		return res, eris.Wrapf(err, "pipeline: read data sheet %s", cfg.Sheets.DataSheet)
	}
	state := acquire.BuildState(dataRows)
	res.Lookback = state.Lookback

	classifier := classify.New(ref, nil)
	f := acquire.NewFetcher(e.Reddit, classifier, acquire.Options{
		Limit:    cfg.Collect.SubmissionLimit,
		Delay:    cfg.Collect.ItemDelay,
		Sleep:    e.sleep(),
		Progress: e.Progress,
	})

	fetched, fetchErr := f.Run(ctx, collections, state)
	if fetched != nil {
		res.Fetched = len(fetched.Records)
		res.Skipped = fetched.Duplicates
		res.Detected = fetched.Detected()
		res.FailedCollections = fetched.FailedNames()
	}
	res.DomainCounts = classifier.Counts()
	if fetchErr != nil {
		return res, eris.Wrap(fetchErr, "pipeline: fetch submissions")
	}

	writer := sheet.NewBatchWriter(e.Table, cfg.Sheets.DataSheet, e.writeRetry("append "+cfg.Sheets.DataSheet))
	if err := writer.Append(ctx, state, fetched.Records); err != nil {
		return res, err
	}
	res.Written = len(fetched.Records)

	if err := e.writeFrequency(ctx, classifier.Frequency()); err != nil {
		return res, err
	}

	prior, _ := sheet.Records(dataRows)
	all := append(prior, fetched.Records...)
	counts := report.TallyDetections(all)
	report.WriteCounts(e.out(), "Subreddit", "Misinformation URLs", counts)
	e.chart(report.Chart{
		Title:  "# of Misinformation URLs found per Subreddit",
		XLabel: "Misinformation URLs",
		Bars:   report.Bars(counts),
	}, report.DetectionsChart)

	zap.L().Info("collection complete",
		zap.Int("collections", res.Collections),
		zap.Int("written", res.Written),
		zap.Int("detected", res.Detected),
		zap.Int("skipped", res.Skipped),
		zap.Strings("failed_collections", res.FailedCollections),
		since(start),
	)
	return res, nil
}

// writeFrequency prints the per-domain detections of this run and, when a
// frequency sheet is configured, replaces its contents with them. A run
// without detections leaves only the header in the sheet.
func (e *Env) writeFrequency(ctx context.Context, freq []classify.DomainCount) error {
	counts := make([]report.Count, len(freq))
	rows := make([][]string, 0, len(freq)+1)
	rows = append(rows, []string{"Domain", "Detections"})
	for i, dc := range freq {
		counts[i] = report.Count{Label: dc.Domain, Count: dc.Count}
		rows = append(rows, []string{dc.Domain, strconv.Itoa(dc.Count)})
	}
	if len(counts) > 0 {
		report.WriteCounts(e.out(), "Domain", "Detections", counts)
	}

	name := e.Config.Sheets.FrequencySheet
	if name == "" {
		return nil
	}
	if err := sheet.ReplaceWithRetry(ctx, e.Table, name, rows, e.writeRetry("replace "+name)); err != nil {
		return eris.Wrap(err, "pipeline: write domain frequency")
	}
	return nil
}
