package acquire

import (
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// Dedup filters out submissions already stored or already seen in this
// run. It never mutates the acquisition state.
type Dedup struct {
	state *model.AcquisitionState
	seen  map[string]struct{}
	dups  int
}

// NewDedup creates a Dedup over the stored IDs of state.
func NewDedup(state *model.AcquisitionState) *Dedup {
	return &Dedup{state: state, seen: make(map[string]struct{})}
}

// Admit reports whether id is new, marking it seen when it is.
func (d *Dedup) Admit(id string) bool {
	if d.state.Has(id) {
		d.dups++
		return false
	}
	if _, ok := d.seen[id]; ok {
		d.dups++
		return false
	}
	d.seen[id] = struct{}{}
	return true
}

// Duplicates returns how many IDs were rejected.
func (d *Dedup) Duplicates() int { return d.dups }

// UniqueCollections drops repeated collection names, compared with case
// folding. The first occurrence wins.
func UniqueCollections(tracked []model.TrackedCollection) []model.TrackedCollection {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(tracked))
	out := make([]model.TrackedCollection, 0, len(tracked))
	for _, tc := range tracked {
		key := fold.String(tc.Name)
		if _, ok := seen[key]; ok {
			zap.L().Info("skipping duplicate collection",
				zap.String("topic", tc.Topic),
				zap.String("subreddit", tc.Name),
			)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tc)
	}
	return out
}
