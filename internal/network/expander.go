package network

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/resilience"
	"github.com/sells-group/misinfo-cli/internal/sheet"
	"github.com/sells-group/misinfo-cli/pkg/reddit"
)

// Defaults from the collection procedure.
const (
	DefaultUsers        = 40
	DefaultCommentLimit = 500
	DefaultUserDelay    = 5 * time.Second
	DefaultSheet        = "user_data"
)

// CommentSource lists a user's comments.
type CommentSource interface {
	UserComments(ctx context.Context, user string, limit int) ([]reddit.Comment, error)
}

// Options configures an Expander.
type Options struct {
	Users        int
	CommentLimit int
	// UserDelay is waited after each user. Negative disables it.
	UserDelay time.Duration
	TopK      int
	Sheet     string
	Sleep     resilience.SleepFunc
	Retry     resilience.RetryConfig
}

// Expander ranks subreddits by association with misinformation posters.
type Expander struct {
	source CommentSource
	table  sheet.Table
	opts   Options
}

// NewExpander creates an Expander persisting rankings to table.
func NewExpander(source CommentSource, table sheet.Table, opts Options) *Expander {
	if opts.Users <= 0 {
		opts.Users = DefaultUsers
	}
	if opts.CommentLimit <= 0 {
		opts.CommentLimit = DefaultCommentLimit
	}
	if opts.UserDelay == 0 {
		opts.UserDelay = DefaultUserDelay
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Sheet == "" {
		opts.Sheet = DefaultSheet
	}
	if opts.Sleep == nil {
		opts.Sleep = resilience.Sleep
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = resilience.WriteRetryConfig(time.Second)
	}
	if opts.Retry.Sleep == nil {
		opts.Retry.Sleep = opts.Sleep
	}
	return &Expander{source: source, table: table, opts: opts}
}

// Expansion is the outcome of one expansion pass.
type Expansion struct {
	Authors []AuthorCount
	// Observed maps each analyzed author to the subreddits they commented in.
	Observed map[string]map[string]struct{}
	Graph    *Graph
	// Ranked is the persisted table, ascending by association count.
	Ranked []Candidate
	// Untracked is the subset of Ranked not already tracked.
	Untracked  []Candidate
	TopPosters []Candidate
}

// Expand analyzes the top misinformation posters in records, persists the
// ranked subreddits and returns those not in tracked.
func (e *Expander) Expand(ctx context.Context, records []model.Record, tracked []string) (*Expansion, error) {
	authors := TopAuthors(records, e.opts.Users)
	zap.L().Info("analyzing misinformation posters", zap.Int("users", len(authors)))

	observed, err := e.Observe(ctx, authors)
	if err != nil {
		return nil, err
	}

	g := BuildGraph(observed)
	cands := g.Candidates()
	ranked := Rank(cands, e.opts.TopK)

	if err := sheet.ReplaceWithRetry(ctx, e.table, e.opts.Sheet, Rows(ranked), e.opts.Retry); err != nil {
		return nil, eris.Wrap(err, "network: persist ranking")
	}
	zap.L().Info("updated ranking sheet", zap.String("sheet", e.opts.Sheet), zap.Int("subreddits", len(ranked)))

	return &Expansion{
		Authors:    authors,
		Observed:   observed,
		Graph:      g,
		Ranked:     ranked,
		Untracked:  Untracked(ranked, tracked),
		TopPosters: TopByPosters(cands, 5),
	}, nil
}

// Observe collects the subreddits of each author's recent comments. When a
// fetch fails partway, the comments read before the failure still count.
// Users with nothing fetched are logged by alias and left out.
func (e *Expander) Observe(ctx context.Context, authors []AuthorCount) (map[string]map[string]struct{}, error) {
	observed := make(map[string]map[string]struct{}, len(authors))
	for _, a := range authors {
		comments, err := e.source.UserComments(ctx, a.Author, e.opts.CommentLimit)
		if err != nil && ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "network: observe users")
		}

		subs := make(map[string]struct{}, len(comments))
		for _, c := range comments {
			if c.Subreddit != "" {
				subs[c.Subreddit] = struct{}{}
			}
		}

		switch {
		case err == nil:
			observed[a.Author] = subs
			zap.L().Info("collected comment subreddits",
				zap.String("user", a.Alias),
				zap.Int("comments", len(comments)),
				zap.Int("subreddits", len(subs)),
			)
		case len(subs) > 0:
			observed[a.Author] = subs
			zap.L().Warn("comment fetch stopped early, keeping partial subreddits",
				zap.String("user", a.Alias),
				zap.Int("comments", len(comments)),
				zap.Int("subreddits", len(subs)),
				zap.Error(err),
			)
		default:
			zap.L().Warn("skipping user after comment fetch error",
				zap.String("user", a.Alias),
				zap.Error(err),
			)
		}

		if e.opts.UserDelay > 0 {
			if err := e.opts.Sleep(ctx, e.opts.UserDelay); err != nil {
				return nil, eris.Wrap(err, "network: user delay")
			}
		}
	}
	return observed, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
