// Package network grows the set of tracked subreddits by looking at where
// the most prolific misinformation posters also comment.
package network

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// AuthorCount is an author of detected records and how many they posted.
type AuthorCount struct {
	Author string
	// Alias is the anonymized name used in logs and charts.
	Alias string
	Count int
}

// TopAuthors ranks the authors of Detected records by count, descending
// with ties broken by name. The first ranked author is treated as an
// outlier and skipped; the next n are returned, or fewer when fewer exist.
func TopAuthors(records []model.Record, n int) []AuthorCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Detected() {
			counts[r.Author]++
		}
	}

	ranked := make([]AuthorCount, 0, len(counts))
	for a, c := range counts {
		ranked = append(ranked, AuthorCount{Author: a, Count: c})
	}
	slices.SortFunc(ranked, func(a, b AuthorCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Author, b.Author)
	})

	if len(ranked) <= 1 {
		return nil
	}
	ranked = ranked[1:]
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Alias = fmt.Sprintf("user_%d", i)
	}
	return ranked
}
