package monitoring

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/store"
)

// Summary aggregates the run ledger over a lookback window.
type Summary struct {
	Runs     int     `json:"runs" yaml:"runs"`
	Complete int     `json:"complete" yaml:"complete"`
	Failed   int     `json:"failed" yaml:"failed"`
	Running  int     `json:"running" yaml:"running"`
	Written  int     `json:"written" yaml:"written"`
	Detected int     `json:"detected" yaml:"detected"`
	Skipped  int     `json:"skipped" yaml:"skipped"`
	FailRate float64 `json:"fail_rate" yaml:"fail_rate"`

	// FailedCollections counts how often each collection was skipped.
	FailedCollections map[string]int `json:"failed_collections,omitempty" yaml:"failed_collections,omitempty"`
	// TopDomains are the most detected domains, highest first.
	TopDomains []DomainTotal `json:"top_domains,omitempty" yaml:"top_domains,omitempty"`

	LookbackHours int       `json:"lookback_hours" yaml:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at" yaml:"collected_at"`
}

// DomainTotal is a domain and its detections summed over runs.
type DomainTotal struct {
	Domain string `json:"domain" yaml:"domain"`
	Count  int    `json:"count" yaml:"count"`
}

// RunLister is the subset of store.Store the collector needs.
type RunLister interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Collector gathers ledger summaries.
type Collector struct {
	store RunLister
	now   func() time.Time
}

// NewCollector creates a new ledger collector.
func NewCollector(st RunLister) *Collector {
	return &Collector{store: st, now: time.Now}
}

// Collect summarizes runs created within the last lookbackHours. A
// lookback of zero or less covers the whole ledger.
func (c *Collector) Collect(ctx context.Context, lookbackHours, topDomains int) (*Summary, error) {
	now := c.now().UTC()
	snap := &Summary{
		LookbackHours:     lookbackHours,
		CollectedAt:       now,
		FailedCollections: make(map[string]int),
	}

	runs, err := c.store.ListRuns(ctx, store.RunFilter{Limit: 10000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)
	domains := make(map[string]int)
	for _, r := range runs {
		if lookbackHours > 0 && r.CreatedAt.Before(cutoff) {
			continue
		}
		snap.Runs++
		switch r.Status {
		case model.RunStatusComplete:
			snap.Complete++
		case model.RunStatusFailed:
			snap.Failed++
		case model.RunStatusRunning:
			snap.Running++
		}
		if r.Result == nil {
			continue
		}
		snap.Written += r.Result.Written
		snap.Detected += r.Result.Detected
		snap.Skipped += r.Result.Skipped
		for _, name := range r.Result.FailedCollections {
			snap.FailedCollections[name]++
		}
		for d, n := range r.Result.DomainCounts {
			domains[d] += n
		}
	}

	if finished := snap.Complete + snap.Failed; finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	snap.TopDomains = rankTotals(domains, topDomains)
	return snap, nil
}

func rankTotals(counts map[string]int, n int) []DomainTotal {
	out := make([]DomainTotal, 0, len(counts))
	for d, c := range counts {
		out = append(out, DomainTotal{Domain: d, Count: c})
	}
	slices.SortFunc(out, func(a, b DomainTotal) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Domain, b.Domain)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
