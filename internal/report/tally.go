package report

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// Count is a label and how many times it occurred.
type Count struct {
	Label string
	Count int
}

// TallyDetections counts Detected records per subreddit, highest first with
// ties broken by name.
func TallyDetections(records []model.Record) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Detected() {
			counts[r.Subreddit]++
		}
	}
	return rank(counts)
}

func rank(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

// Bars converts counts to chart bars with the largest count drawn on top.
func Bars(counts []Count) []Bar {
	bars := make([]Bar, len(counts))
	for i, c := range counts {
		bars[len(counts)-1-i] = Bar{Label: c.Label, Value: float64(c.Count)}
	}
	return bars
}

// PosterBars charts candidates by number of distinct posters, in the order
// given.
func PosterBars(cands []model.NetworkCandidate) []Bar {
	bars := make([]Bar, len(cands))
	for i, c := range cands {
		bars[i] = Bar{Label: c.Subreddit, Value: float64(c.Posters)}
	}
	return bars
}

func itoa(n int) string { return strconv.Itoa(n) }
