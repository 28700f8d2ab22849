package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/network"
	"github.com/sells-group/misinfo-cli/internal/report"
	"github.com/sells-group/misinfo-cli/internal/sheet"
)

// Expand ranks the subreddits where the most prolific misinformation
// posters also comment, persists the ranking and, when enabled, adds the
// untracked ones to the tracking sheet.
func (e *Env) Expand(ctx context.Context) (*model.RunResult, *network.Expansion, error) {
	start := time.Now()
	cfg := e.Config
	res := &model.RunResult{}

	dataRows, err := e.Table.Read(ctx, cfg.Sheets.DataSheet)
	if err != nil {
		return res, nil, eris.Wrapf(err, "pipeline: read data sheet %s", cfg.Sheets.DataSheet)
	}
	records, invalid := sheet.Records(dataRows)
	res.Skipped = invalid

	trackingRows, err := e.Table.Read(ctx, cfg.Sheets.TrackingSheet)
	if err != nil {
		return res, nil, eris.Wrapf(err, "pipeline: read tracking sheet %s", cfg.Sheets.TrackingSheet)
	}
	tracked := trackedNames(model.ParseTracking(trackingRows), records)
	res.Collections = len(tracked)

	for _, r := range records {
		if r.Detected() {
			res.Detected++
		}
	}

	expander := network.NewExpander(e.Reddit, e.Table, network.Options{
		Users:        cfg.Expand.Users,
		CommentLimit: cfg.Expand.CommentLimit,
		UserDelay:    cfg.Expand.UserDelay,
		TopK:         cfg.Expand.TopSubreddits,
		Sheet:        cfg.Sheets.UserSheet,
		Sleep:        e.sleep(),
		Retry:        e.writeRetry("replace " + cfg.Sheets.UserSheet),
	})
	exp, err := expander.Expand(ctx, records, tracked)
	if err != nil {
		return res, nil, err
	}
	res.Candidates = exp.Ranked
	res.Fetched = len(exp.Observed)

	report.WriteCandidates(e.out(), exp.Untracked)

	if cfg.Expand.UpdateTracking {
		topic := cfg.Expand.Topic
		if topic == "" {
			topic = network.DefaultTopic
		}
		added, err := network.AddToTracking(ctx, e.Table, cfg.Sheets.TrackingSheet, topic, exp.Untracked,
			e.writeRetry("replace "+cfg.Sheets.TrackingSheet))
		if err != nil {
			return res, exp, err
		}
		res.Written = len(added)
	}

	e.chartExpansion(exp)

	zap.L().Info("network expansion complete",
		zap.Int("authors", len(exp.Authors)),
		zap.Int("ranked", len(exp.Ranked)),
		zap.Int("untracked", len(exp.Untracked)),
		zap.Int("added", res.Written),
		since(start),
	)
	return res, exp, nil
}

func (e *Env) chartExpansion(exp *network.Expansion) {
	users := make([]report.Count, len(exp.Authors))
	for i, a := range exp.Authors {
		users[i] = report.Count{Label: a.Alias, Count: a.Count}
	}
	e.chart(report.Chart{
		Title:  "Top Users Posting Most Misinformation URLs",
		XLabel: "Misinformation URLs",
		Bars:   report.Bars(users),
	}, report.UsersChart(len(exp.Authors)))

	e.chart(report.Chart{
		Title:  "# of MisInfo Posters per Subreddit",
		XLabel: "MisInfo Posters",
		Bars:   report.PosterBars(exp.TopPosters),
	}, report.PostersChart)
}

// trackedNames is every subreddit either listed in the tracking sheet or
// already present in the data sheet.
func trackedNames(tracking []model.TrackedCollection, records []model.Record) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		name = model.NormalizeCollection(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, tc := range tracking {
		add(tc.Name)
	}
	for _, r := range records {
		add(r.Subreddit)
	}
	return names
}
