package acquire

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// Progress receives per-collection fetch progress.
type Progress interface {
	// Start begins a collection expected to yield up to total items.
	Start(tc model.TrackedCollection, lookback model.Lookback, total int)
	// Advance reports that the index-th item (0-based) was received.
	Advance(index int)
	// Done ends the current collection.
	Done()
}

// Percent is the progress of item index out of total, rounded to two
// decimals.
func Percent(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(index) / float64(total) * 100
	return float64(int(p*100+0.5)) / 100
}

type noProgress struct{}

func (noProgress) Start(model.TrackedCollection, model.Lookback, int) {}
func (noProgress) Advance(int)                                        {}
func (noProgress) Done()                                              {}

// BarProgress renders a console progress bar per collection.
type BarProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewBarProgress creates a BarProgress writing to w.
func NewBarProgress(w io.Writer) *BarProgress {
	return &BarProgress{w: w}
}

// Start implements Progress.
func (p *BarProgress) Start(tc model.TrackedCollection, lookback model.Lookback, total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(fmt.Sprintf("r/%s (top %s)", tc.Name, lookback)),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Advance implements Progress.
func (p *BarProgress) Advance(index int) {
	if p.bar != nil {
		_ = p.bar.Set(index + 1)
	}
}

// Done implements Progress.
func (p *BarProgress) Done() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// LogProgress logs collection progress every Every items.
type LogProgress struct {
	Every int

	tc    model.TrackedCollection
	total int
}

// Start implements Progress.
func (p *LogProgress) Start(tc model.TrackedCollection, lookback model.Lookback, total int) {
	p.tc, p.total = tc, total
	zap.L().Info("fetching collection",
		zap.String("topic", tc.Topic),
		zap.String("subreddit", tc.Name),
		zap.String("lookback", string(lookback)),
		zap.Int("limit", total),
	)
}

// Advance implements Progress.
func (p *LogProgress) Advance(index int) {
	every := p.Every
	if every <= 0 {
		every = 100
	}
	if index%every != 0 {
		return
	}
	zap.L().Debug("fetch progress",
		zap.String("subreddit", p.tc.Name),
		zap.Float64("percent", Percent(index, p.total)),
	)
}

// Done implements Progress.
func (p *LogProgress) Done() {}
