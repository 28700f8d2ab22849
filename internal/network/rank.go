package network

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// DefaultTopK is the number of subreddits kept after ranking.
const DefaultTopK = 42

// Candidate is a ranked subreddit.
type Candidate = model.NetworkCandidate

// Rank keeps the k subreddits with the highest association counts (ties by
// name) and returns them in ascending order of count, ties by name.
func Rank(cands []Candidate, k int) []Candidate {
	ranked := slices.Clone(cands)
	slices.SortFunc(ranked, func(a, b Candidate) int {
		if c := cmp.Compare(b.AssociationCount, a.AssociationCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Subreddit, b.Subreddit)
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return cmp.Compare(a.AssociationCount, b.AssociationCount)
	})
	return ranked
}

// TopByPosters returns the n subreddits with the most posters, descending,
// ties by name.
func TopByPosters(cands []Candidate, n int) []Candidate {
	ranked := slices.Clone(cands)
	slices.SortFunc(ranked, func(a, b Candidate) int {
		if c := cmp.Compare(b.Posters, a.Posters); c != 0 {
			return c
		}
		return cmp.Compare(a.Subreddit, b.Subreddit)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Untracked returns the candidates whose names, compared with case
// folding, are not in tracked.
func Untracked(ranked []Candidate, tracked []string) []Candidate {
	fold := cases.Fold()
	known := make(map[string]struct{}, len(tracked))
	for _, t := range tracked {
		known[fold.String(model.NormalizeCollection(t))] = struct{}{}
	}
	var out []Candidate
	for _, c := range ranked {
		if _, ok := known[fold.String(c.Subreddit)]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Rows renders candidates as user_data sheet rows, header first.
func Rows(cands []Candidate) [][]string {
	rows := make([][]string, 0, len(cands)+1)
	rows = append(rows, model.CandidateColumns)
	for _, c := range cands {
		rows = append(rows, []string{c.Subreddit, itoa(c.AssociationCount), itoa(c.Posters)})
	}
	return rows
}
