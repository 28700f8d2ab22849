package acquire

import (
	"context"
	"iter"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/classify"
	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/resilience"
	"github.com/sells-group/misinfo-cli/pkg/reddit"
)

// Defaults for one collection fetch.
const (
	DefaultLimit = 1000
	DefaultDelay = 5 * time.Millisecond
)

// Source lists submissions of a collection.
type Source interface {
	Submissions(ctx context.Context, q reddit.Query) iter.Seq2[reddit.Submission, error]
}

// Options configures a Fetcher.
type Options struct {
	// Limit caps items per collection. Default DefaultLimit.
	Limit int
	// Delay is waited after each new item. Default DefaultDelay; negative
	// disables it.
	Delay    time.Duration
	Sleep    resilience.SleepFunc
	Progress Progress
}

// Fetcher pulls each tracked collection's top submissions for the lookback
// window, drops known IDs and classifies the rest.
type Fetcher struct {
	source     Source
	classifier *classify.Classifier
	opts       Options
}

// NewFetcher creates a Fetcher.
func NewFetcher(source Source, classifier *classify.Classifier, opts Options) *Fetcher {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = resilience.Sleep
	}
	if opts.Progress == nil {
		opts.Progress = noProgress{}
	}
	return &Fetcher{source: source, classifier: classifier, opts: opts}
}

// Result is the outcome of fetching every collection.
type Result struct {
	Records []model.Record
	// Duplicates counts items skipped because their ID was already known.
	Duplicates int
	Failures   []*FetchError
}

// Detected counts records labelled Detected.
func (r *Result) Detected() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Detected() {
			n++
		}
	}
	return n
}

// FailedNames lists the collections that were skipped after an error.
func (r *Result) FailedNames() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Collection.Name)
	}
	return out
}

// Run fetches the collections in order. A collection that fails is logged
// and skipped, keeping the records it yielded before failing. An Abort
// failure stops the run and is returned along with the partial result.
func (f *Fetcher) Run(ctx context.Context, collections []model.TrackedCollection, state *model.AcquisitionState) (*Result, error) {
	dedup := NewDedup(state)
	res := &Result{}

	for _, tc := range collections {
		recs, err := f.fetch(ctx, tc, state.Lookback, dedup)
		res.Records = append(res.Records, recs...)
		if err == nil {
			continue
		}

		fe := NewFetchError(tc, err)
		if fe.Cause == Abort {
			res.Duplicates = dedup.Duplicates()
			return res, fe
		}
		zap.L().Warn("skipping collection after fetch error",
			zap.String("topic", tc.Topic),
			zap.String("subreddit", tc.Name),
			zap.Error(err),
		)
		res.Failures = append(res.Failures, fe)
	}

	res.Duplicates = dedup.Duplicates()
	zap.L().Info("fetch complete",
		zap.Int("collections", len(collections)),
		zap.Int("new_records", len(res.Records)),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("failed", len(res.Failures)),
	)
	return res, nil
}

func (f *Fetcher) fetch(ctx context.Context, tc model.TrackedCollection, lookback model.Lookback, dedup *Dedup) ([]model.Record, error) {
	f.opts.Progress.Start(tc, lookback, f.opts.Limit)
	defer f.opts.Progress.Done()

	q := reddit.Query{
		Subreddit: tc.Name,
		Sort:      reddit.SortTop,
		Window:    string(lookback),
		Limit:     f.opts.Limit,
	}

	var records []model.Record
	index := 0
	for sub, err := range f.source.Submissions(ctx, q) {
		if err != nil {
			return records, err
		}
		f.opts.Progress.Advance(index)
		index++

		if !dedup.Admit(sub.ID) {
			continue
		}
		records = append(records, f.classifier.Classify(tc, sub))

		if f.opts.Delay > 0 {
			if err := f.opts.Sleep(ctx, f.opts.Delay); err != nil {
				return records, eris.Wrap(err, "acquire: item delay")
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}
