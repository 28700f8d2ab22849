// Package classify turns fetched submissions into labelled records.
package classify

import (
	"cmp"
	"net/url"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/pkg/reddit"
)

// Reference answers whether a domain is a known misinformation source.
type Reference interface {
	Contains(domain string) bool
}

// Notifier is told about every detection.
type Notifier interface {
	Detected(rec model.Record)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(rec model.Record)

// Detected calls f(rec).
func (f NotifierFunc) Detected(rec model.Record) { f(rec) }

// LogNotifier logs detections at warn level.
type LogNotifier struct{}

// Detected implements Notifier.
func (LogNotifier) Detected(rec model.Record) {
	zap.L().Warn("misinformation detected",
		zap.String("subreddit", rec.Subreddit),
		zap.String("domain", rec.URLDomain),
		zap.String("id", rec.ID),
	)
}

// excludedHosts are media and platform hosts whose links never count as
// external sources.
var excludedHosts = []string{"i.redd.it", "v.redd.it"}

var excludedSubstrings = []string{"reddit", "imgur", "youtu"}

// Excluded reports whether a submission's link is self-hosted media or a
// platform link rather than an external source.
func Excluded(s reddit.Submission) bool {
	if s.IsSelf {
		return true
	}
	host := linkHost(s)
	if slices.Contains(excludedHosts, host) {
		return true
	}
	for _, sub := range excludedSubstrings {
		if strings.Contains(host, sub) {
			return true
		}
	}
	return false
}

func linkHost(s reddit.Submission) string {
	if s.Domain != "" {
		return strings.ToLower(s.Domain)
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Classifier labels submissions and tallies detections per domain.
type Classifier struct {
	ref      Reference
	notifier Notifier
	freq     map[string]int
}

// New creates a Classifier. A nil notifier logs detections.
func New(ref Reference, notifier Notifier) *Classifier {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Classifier{ref: ref, notifier: notifier, freq: make(map[string]int)}
}

// Classify builds the record for s fetched from tracked collection tc.
// Missing or deleted authors and excluded link domains are replaced by the
// sentinel. The label is Detected when the link host is in the reference.
func (c *Classifier) Classify(tc model.TrackedCollection, s reddit.Submission) model.Record {
	author := s.Author
	if author == "" || author == "[deleted]" {
		author = model.Sentinel
	}

	host := linkHost(s)
	urlDomain := model.Sentinel
	if host != "" && !Excluded(s) {
		urlDomain = host
	}

	rec := model.Record{
		Topic:       tc.Topic,
		Subreddit:   tc.Name,
		Title:       s.Title,
		Author:      author,
		Text:        s.SelfText,
		URLDomain:   urlDomain,
		CreatedAt:   model.Timestamp{Time: s.Created()},
		Downvotes:   s.Downs,
		Upvotes:     s.Ups,
		UpvoteRatio: s.UpvoteRatio,
		ID:          s.ID,
		Label:       model.LabelUndetected,
	}

	if host != "" && c.ref != nil && c.ref.Contains(host) {
		rec.Label = model.LabelDetected
		c.freq[host]++
		c.notifier.Detected(rec)
	}
	return rec
}

// DomainCount is one row of the detection frequency table.
type DomainCount struct {
	Domain string
	Count  int
}

// Frequency returns detections per domain, descending by count and then
// by domain.
func (c *Classifier) Frequency() []DomainCount {
	return RankDomains(c.freq)
}

// Counts returns a copy of the raw detection counts.
func (c *Classifier) Counts() map[string]int {
	out := make(map[string]int, len(c.freq))
	for k, v := range c.freq {
		out[k] = v
	}
	return out
}

// RankDomains orders counts descending by count and then by domain.
func RankDomains(counts map[string]int) []DomainCount {
	out := make([]DomainCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DomainCount{Domain: d, Count: n})
	}
	slices.SortFunc(out, func(a, b DomainCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Domain, b.Domain)
	})
	return out
}
