package pipeline

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/misinfo-cli/internal/config"
	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/monitoring"
	"github.com/sells-group/misinfo-cli/internal/report"
	"github.com/sells-group/misinfo-cli/internal/sheet"
	"github.com/sells-group/misinfo-cli/internal/store"
	"github.com/sells-group/misinfo-cli/pkg/reddit"
	"github.com/sells-group/misinfo-cli/pkg/reddit/mocks"
)

func noSleep(context.Context, time.Duration) error { return nil }

func testConfig(dir string) *config.Config {
	cfg := &config.Config{}
	cfg.Sheets.TrackingSheet = "subreddits"
	cfg.Sheets.DataSheet = "submission_data"
	cfg.Sheets.UserSheet = "user_data"
	cfg.Sheets.FrequencySheet = "domain_frequency"
	cfg.Collect.SubmissionLimit = 10
	cfg.Collect.ItemDelay = -1
	cfg.Collect.ReferencePath = filepath.Join(dir, "iffy.tsv")
	cfg.Collect.SamplePath = filepath.Join(dir, "sample.csv")
	cfg.Collect.OutputDir = filepath.Join(dir, "outputs")
	cfg.Expand.Users = 40
	cfg.Expand.CommentLimit = 500
	cfg.Expand.UserDelay = -1
	cfg.Expand.TopSubreddits = 42
	cfg.Expand.Topic = "Misinformation Network"
	cfg.Expand.UpdateTracking = true
	return cfg
}

func newTestEnv(t *testing.T) (*Env, *sheet.Workbook, *mocks.MockClient, string) {
	t.Helper()
	dir := t.TempDir()
	wb, err := sheet.OpenWorkbook(filepath.Join(dir, "book.xlsx"))
	require.NoError(t, err)

	rc := mocks.NewMockClient(t)
	env := &Env{
		Config: testConfig(dir),
		Reddit: rc,
		Table:  wb,
		Out:    &bytes.Buffer{},
		Sleep:  noSleep,
	}
	return env, wb, rc, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollect_AppendsAndDedups(t *testing.T) {
	ctx := context.Background()
	env, wb, rc, dir := newTestEnv(t)

	writeFile(t, filepath.Join(dir, "iffy.tsv"), "Domain\tName\nFake-News.example\tFake News\n")
	require.NoError(t, wb.Replace(ctx, "subreddits", [][]string{{"News"}, {"worldnews"}}))

	created := float64(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix())
	subs := []reddit.Submission{
		{ID: "a1", Title: "Shocking", Author: "bob", URL: "https://fake-news.example/x", Domain: "fake-news.example", CreatedUTC: created, Ups: 10, UpvoteRatio: 0.9},
		{ID: "a2", Title: "Discussion", Author: "[deleted]", IsSelf: true, Domain: "self.worldnews", CreatedUTC: created},
	}
	rc.On("Submissions", mock.Anything, mock.MatchedBy(func(q reddit.Query) bool {
		return q.Subreddit == "worldnews" && q.Sort == reddit.SortTop && q.Limit == 10
	})).Return(mocks.Seq(subs, nil))

	res, err := env.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Collections)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, res.Detected)
	assert.Equal(t, model.LookbackYear, res.Lookback)
	assert.Equal(t, map[string]int{"fake-news.example": 1}, res.DomainCounts)

	rows, err := wb.Read(ctx, "submission_data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, model.Columns, rows[0])
	records, invalid := sheet.Records(rows)
	require.Zero(t, invalid)
	assert.Equal(t, "worldnews", records[0].Subreddit)
	assert.Equal(t, "fake-news.example", records[0].URLDomain)
	assert.Equal(t, model.LabelDetected, records[0].Label)
	assert.Equal(t, model.Sentinel, records[1].Author)
	assert.Equal(t, model.Sentinel, records[1].URLDomain)

	freq, err := wb.Read(ctx, "domain_frequency")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Domain", "Detections"}, {"fake-news.example", "1"}}, freq)

	_, err = os.Stat(filepath.Join(dir, "outputs", report.DetectionsChart))
	assert.NoError(t, err)

	// A second run sees the same items and writes nothing new.
	res, err = env.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Written)
	assert.Equal(t, 2, res.Skipped)

	rows, err = wb.Read(ctx, "submission_data")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestCollect_FrequencySheetResetWithoutDetections(t *testing.T) {
	ctx := context.Background()
	env, wb, rc, dir := newTestEnv(t)

	writeFile(t, filepath.Join(dir, "iffy.tsv"), "Domain\nfake-news.example\n")
	require.NoError(t, wb.Replace(ctx, "subreddits", [][]string{{"Health"}, {"health"}}))

	rc.On("Submissions", mock.Anything, mock.Anything).
		Return(mocks.Seq([]reddit.Submission{{ID: "f1", Domain: "fake-news.example", URL: "https://fake-news.example/a"}}, nil)).
		Once()
	rc.On("Submissions", mock.Anything, mock.Anything).
		Return(mocks.Seq([]reddit.Submission{{ID: "n1", Domain: "nih.gov", URL: "https://nih.gov/b"}}, nil)).
		Once()

	res, err := env.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Detected)

	freq, err := wb.Read(ctx, "domain_frequency")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Domain", "Detections"}, {"fake-news.example", "1"}}, freq)

	res, err = env.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Detected)
	assert.Equal(t, 1, res.Written)

	freq, err = wb.Read(ctx, "domain_frequency")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Domain", "Detections"}}, freq)
}

func TestCollect_SkipsFailedCollection(t *testing.T) {
	ctx := context.Background()
	env, wb, rc, dir := newTestEnv(t)

	writeFile(t, filepath.Join(dir, "iffy.tsv"), "Domain\nfake-news.example\n")
	require.NoError(t, wb.Replace(ctx, "subreddits", [][]string{{"News", "Health"}, {"private_sub", "health"}}))

	rc.On("Submissions", mock.Anything, mock.MatchedBy(func(q reddit.Query) bool { return q.Subreddit == "private_sub" })).
		Return(mocks.Seq(nil, errors.New("reddit: unexpected status 403: forbidden")))
	rc.On("Submissions", mock.Anything, mock.MatchedBy(func(q reddit.Query) bool { return q.Subreddit == "health" })).
		Return(mocks.Seq([]reddit.Submission{{ID: "h1", Domain: "cdc.gov", URL: "https://cdc.gov/a"}}, nil))

	res, err := env.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"private_sub"}, res.FailedCollections)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 0, res.Detected)
}

func TestCollect_MissingReference(t *testing.T) {
	env, wb, _, _ := newTestEnv(t)
	require.NoError(t, wb.Replace(context.Background(), "subreddits", [][]string{{"News"}, {"worldnews"}}))

	_, err := env.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference")
}

func TestCollect_MissingTrackingSheet(t *testing.T) {
	env, _, _, dir := newTestEnv(t)
	writeFile(t, filepath.Join(dir, "iffy.tsv"), "Domain\nfake-news.example\n")

	_, err := env.Collect(context.Background())
	require.Error(t, err)
	assert.True(t, sheet.IsNotFound(err))
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env, wb, rc, dir := newTestEnv(t)

	writeFile(t, filepath.Join(dir, "iffy.tsv"), "Domain\nfake-news.example\n")
	require.NoError(t, wb.Replace(ctx, "subreddits", [][]string{{"News", "Health"}, {"worldnews", "health"}}))

	rc.On("Submissions", mock.Anything, mock.MatchedBy(func(q reddit.Query) bool { return q.Subreddit == "worldnews" })).
		Return(func(context.Context, reddit.Query) iter.Seq2[reddit.Submission, error] {
			cancel()
			return mocks.Seq([]reddit.Submission{{ID: "w1", Domain: "fake-news.example"}}, context.Canceled)
		})

	res, err := env.Collect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Fetched)
	assert.Equal(t, 0, res.Written)

	rows, err := wb.Read(context.Background(), "submission_data")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func detectedRecord(id, author, subreddit string) model.Record {
	return model.Record{
		Topic: "News", Subreddit: subreddit, Author: author, ID: id,
		URLDomain: "fake-news.example", Label: model.LabelDetected,
		CreatedAt: model.Timestamp{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestExpand_RanksAndTracks(t *testing.T) {
	ctx := context.Background()
	env, wb, rc, dir := newTestEnv(t)

	records := []model.Record{
		detectedRecord("1", model.Sentinel, "news"),
		detectedRecord("2", model.Sentinel, "news"),
		detectedRecord("3", model.Sentinel, "news"),
		detectedRecord("4", "alice", "news"),
		detectedRecord("5", "alice", "news"),
		detectedRecord("6", "bob", "news"),
	}
	rows := [][]string{model.Columns}
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	require.NoError(t, wb.Replace(ctx, "submission_data", rows))
	require.NoError(t, wb.Replace(ctx, "subreddits", [][]string{{"News"}, {"news"}}))

	rc.On("UserComments", mock.Anything, "alice", 500).Return([]reddit.Comment{
		{Subreddit: "news"}, {Subreddit: "conspiracy"}, {Subreddit: "news"},
	}, nil)
	rc.On("UserComments", mock.Anything, "bob", 500).Return([]reddit.Comment{
		{Subreddit: "conspiracy"}, {Subreddit: "health"},
	}, nil)

	res, exp, err := env.Expand(ctx)
	require.NoError(t, err)
	require.NotNil(t, exp)

	assert.Equal(t, []model.NetworkCandidate{
		{Subreddit: "health", AssociationCount: 1, Posters: 1},
		{Subreddit: "news", AssociationCount: 1, Posters: 1},
		{Subreddit: "conspiracy", AssociationCount: 2, Posters: 2},
	}, res.Candidates)
	assert.Equal(t, 6, res.Detected)
	assert.Equal(t, 2, res.Written)

	userRows, err := wb.Read(ctx, "user_data")
	require.NoError(t, err)
	require.Len(t, userRows, 4)
	assert.Equal(t, []string{"conspiracy", "2", "2"}, userRows[3])

	tracking, err := wb.Read(ctx, "subreddits")
	require.NoError(t, err)
	var added []string
	for _, tc := range model.ParseTracking(tracking) {
		if tc.Topic == "Misinformation Network" {
			added = append(added, tc.Name)
		}
	}
	assert.ElementsMatch(t, []string{"health", "conspiracy"}, added)

	_, err = os.Stat(filepath.Join(dir, "outputs", report.UsersChart(2)))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "outputs", report.PostersChart))
	assert.NoError(t, err)
}

func TestExpand_NoTrackingUpdate(t *testing.T) {
	ctx := context.Background()
	env, wb, rc, _ := newTestEnv(t)
	env.Config.Expand.UpdateTracking = false

	rows := [][]string{model.Columns,
		detectedRecord("1", model.Sentinel, "news").Row(),
		detectedRecord("2", "alice", "news").Row(),
	}
	require.NoError(t, wb.Replace(ctx, "submission_data", rows))
	require.NoError(t, wb.Replace(ctx, "subreddits", [][]string{{"News"}, {"news"}}))

	rc.On("UserComments", mock.Anything, "alice", 500).Return([]reddit.Comment{{Subreddit: "health"}}, nil)

	res, _, err := env.Expand(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Written)

	tracking, err := wb.Read(ctx, "subreddits")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"News"}, {"news"}}, tracking)
}

func TestTrackedNames(t *testing.T) {
	got := trackedNames(
		[]model.TrackedCollection{{Topic: "A", Name: "r/news"}, {Topic: "B", Name: "health"}},
		[]model.Record{{Subreddit: "news"}, {Subreddit: "science"}, {Subreddit: ""}},
	)
	assert.Equal(t, []string{"news", "health", "science"}, got)
}

func TestSample(t *testing.T) {
	env, _, _, dir := newTestEnv(t)

	var buf bytes.Buffer
	require.NoError(t, model.WriteRecordsCSV(&buf, []model.Record{
		detectedRecord("1", "a", "news"),
		detectedRecord("2", "b", "news"),
		detectedRecord("3", "c", "health"),
		{ID: "4", Subreddit: "health", Label: model.LabelUndetected},
	}))
	writeFile(t, filepath.Join(dir, "sample.csv"), buf.String())

	counts, err := env.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []report.Count{{Label: "news", Count: 2}, {Label: "health", Count: 1}}, counts)
	assert.Contains(t, env.Out.(*bytes.Buffer).String(), "news")

	_, err = os.Stat(filepath.Join(dir, "outputs", report.DetectionsChart))
	assert.NoError(t, err)
}

func TestSample_MissingFile(t *testing.T) {
	env, _, _, _ := newTestEnv(t)
	_, err := env.Sample(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: open sample")
}

func TestRecord_Ledger(t *testing.T) {
	ctx := context.Background()
	env, _, _, dir := newTestEnv(t)

	st, err := store.NewSQLite(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	env.Store = st
	env.OnClose(st.Close)
	defer env.Close()

	var alerts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		alerts.Add(1)
	}))
	defer ts.Close()
	env.Alerter = monitoring.NewAlerter(config.MonitoringConfig{WebhookURL: ts.URL, MinDetections: 1})

	run, err := env.Record(ctx, model.RunModeCollect, func(context.Context) (*model.RunResult, error) {
		return &model.RunResult{Written: 4, Detected: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, int32(1), alerts.Load())

	stored, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, stored.Status)
	assert.Equal(t, 4, stored.Result.Written)

	boom := errors.New("sheets: unexpected status 403")
	run, err = env.Record(ctx, model.RunModeExpand, func(context.Context) (*model.RunResult, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, model.RunStatusFailed, run.Status)

	stored, err = st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, stored.Status)
	assert.Equal(t, boom.Error(), stored.Error)
	assert.Equal(t, int32(2), alerts.Load())
}

func TestRecord_NoStore(t *testing.T) {
	env, _, _, _ := newTestEnv(t)

	run, err := env.Record(context.Background(), model.RunModeCollect, func(context.Context) (*model.RunResult, error) {
		return &model.RunResult{Written: 1}, nil
	})
	require.NoError(t, err)
	assert.Empty(t, run.ID)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}

func TestEnvClose_ReverseOrder(t *testing.T) {
	var order []int
	env := &Env{}
	env.OnClose(func() error { order = append(order, 1); return nil })
	env.OnClose(func() error { order = append(order, 2); return errors.New("ignored") })
	env.Close()
	assert.Equal(t, []int{2, 1}, order)
}
