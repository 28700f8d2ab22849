package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/reference"
	"github.com/sells-group/misinfo-cli/pkg/reddit"
)

func TestClassify_Detected(t *testing.T) {
	var notified []model.Record
	c := New(reference.NewSet("fake-news.example"), NotifierFunc(func(r model.Record) {
		notified = append(notified, r)
	}))

	rec := c.Classify(model.TrackedCollection{Topic: "Politics", Name: "news"}, reddit.Submission{
		ID:          "a1",
		Subreddit:   "news",
		Title:       "headline",
		Author:      "alice",
		URL:         "https://fake-news.example/story",
		Domain:      "Fake-News.example",
		CreatedUTC:  float64(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix()),
		Ups:         10,
		UpvoteRatio: 0.9,
	})

	assert.Equal(t, model.LabelDetected, rec.Label)
	assert.Equal(t, "fake-news.example", rec.URLDomain)
	assert.Equal(t, "news", rec.Subreddit)
	assert.Equal(t, "alice", rec.Author)
	assert.Equal(t, "Politics", rec.Topic)
	assert.Equal(t, 10, rec.Upvotes)
	assert.Equal(t, 2024, rec.CreatedAt.Year())
	require.Len(t, notified, 1)
	assert.Equal(t, []DomainCount{{Domain: "fake-news.example", Count: 1}}, c.Frequency())
}

func TestClassify_DetectsFromURLHost(t *testing.T) {
	c := New(reference.NewSet("fake-news.example"), NotifierFunc(func(model.Record) {}))

	rec := c.Classify(model.TrackedCollection{Topic: "Politics", Name: "news"}, reddit.Submission{
		ID:     "a2",
		Author: "alice",
		URL:    "https://Fake-News.example/story",
	})

	assert.Equal(t, "fake-news.example", rec.URLDomain)
	assert.Equal(t, model.LabelDetected, rec.Label)
	assert.Equal(t, map[string]int{"fake-news.example": 1}, c.Counts())
}

func TestClassify_Sentinels(t *testing.T) {
	c := New(reference.NewSet("fake-news.example"), NotifierFunc(func(model.Record) {}))

	tests := []struct {
		name       string
		sub        reddit.Submission
		wantAuthor string
		wantURL    string
	}{
		{"self post", reddit.Submission{Author: "bob", IsSelf: true, URL: "https://reddit.com/r/x/1", Domain: "self.x"}, "bob", model.Sentinel},
		{"image host", reddit.Submission{Author: "bob", URL: "https://i.redd.it/a.png", Domain: "i.redd.it"}, "bob", model.Sentinel},
		{"video host", reddit.Submission{Author: "bob", URL: "https://v.redd.it/a", Domain: "v.redd.it"}, "bob", model.Sentinel},
		{"imgur", reddit.Submission{Author: "bob", URL: "https://i.imgur.com/a.jpg", Domain: "i.imgur.com"}, "bob", model.Sentinel},
		{"youtube", reddit.Submission{Author: "bob", URL: "https://youtu.be/x", Domain: "youtu.be"}, "bob", model.Sentinel},
		{"deleted author", reddit.Submission{Author: "[deleted]", URL: "https://site.example/a", Domain: "site.example"}, model.Sentinel, "site.example"},
		{"missing author", reddit.Submission{URL: "https://site.example/a", Domain: "site.example"}, model.Sentinel, "site.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.Classify(model.TrackedCollection{Topic: "T", Name: "x"}, tt.sub)
			assert.Equal(t, tt.wantAuthor, rec.Author)
			assert.Equal(t, tt.wantURL, rec.URLDomain)
			assert.Equal(t, model.LabelUndetected, rec.Label)
		})
	}
	assert.Empty(t, c.Frequency())
}

func TestExcluded_FallsBackToURLHost(t *testing.T) {
	assert.True(t, Excluded(reddit.Submission{URL: "https://www.reddit.com/r/x/comments/1"}))
	assert.False(t, Excluded(reddit.Submission{URL: "https://news.example/a"}))
}

func TestRankDomains(t *testing.T) {
	got := RankDomains(map[string]int{"b.example": 2, "a.example": 2, "c.example": 5})
	assert.Equal(t, []DomainCount{
		{"c.example", 5},
		{"a.example", 2},
		{"b.example", 2},
	}, got)
}

func TestCounts_ReturnsCopy(t *testing.T) {
	c := New(reference.NewSet("x.example"), NotifierFunc(func(model.Record) {}))
	c.Classify(model.TrackedCollection{Topic: "T", Name: "x"}, reddit.Submission{Domain: "x.example", URL: "https://x.example"})
	counts := c.Counts()
	counts["x.example"] = 99
	assert.Equal(t, 1, c.Counts()["x.example"])
}

func TestNew_DefaultNotifier(t *testing.T) {
	c := New(nil, nil)
	assert.IsType(t, LogNotifier{}, c.notifier)
	rec := c.Classify(model.TrackedCollection{Topic: "T", Name: "x"}, reddit.Submission{Domain: "x.example", URL: "https://x.example"})
	assert.Equal(t, model.LabelUndetected, rec.Label)
}
