package network

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/resilience"
	"github.com/sells-group/misinfo-cli/internal/sheet"
)

// DefaultTopic is the tracking sheet column that receives discovered
// subreddits.
const DefaultTopic = "Misinformation Network"

// AddToTracking appends the candidates under topic in the tracking sheet
// and writes it back. It returns the names that were actually added.
func AddToTracking(ctx context.Context, table sheet.Table, trackingSheet, topic string, cands []Candidate, retry resilience.RetryConfig) ([]string, error) {
	if len(cands) == 0 {
		return nil, nil
	}

	rows, err := table.Read(ctx, trackingSheet)
	if err != nil {
		return nil, eris.Wrap(err, "network: read tracking sheet")
	}

	before := make(map[string]struct{})
	for _, tc := range model.ParseTracking(rows) {
		before[tc.Name] = struct{}{}
	}

	names := make([]string, 0, len(cands))
	for _, c := range cands {
		names = append(names, c.Subreddit)
	}
	updated := model.AppendTracking(rows, topic, names)

	var added []string
	for _, tc := range model.ParseTracking(updated) {
		if _, ok := before[tc.Name]; !ok && tc.Topic == topic {
			added = append(added, tc.Name)
		}
	}
	if len(added) == 0 {
		return nil, nil
	}

	if err := sheet.ReplaceWithRetry(ctx, table, trackingSheet, updated, retry); err != nil {
		return nil, eris.Wrap(err, "network: write tracking sheet")
	}
	zap.L().Info("added subreddits to tracking sheet",
		zap.String("topic", topic),
		zap.Strings("subreddits", added),
	)
	return added, nil
}
