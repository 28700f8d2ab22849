// Package pipeline runs the CLI modes: sample tally, submission collection
// and network expansion. Each invocation builds one Env and passes it
// explicitly.
package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/acquire"
	"github.com/sells-group/misinfo-cli/internal/config"
	"github.com/sells-group/misinfo-cli/internal/fetcher"
	"github.com/sells-group/misinfo-cli/internal/monitoring"
	"github.com/sells-group/misinfo-cli/internal/resilience"
	"github.com/sells-group/misinfo-cli/internal/sheet"
	"github.com/sells-group/misinfo-cli/internal/store"
	"github.com/sells-group/misinfo-cli/pkg/reddit"
)

// Env holds the configuration and clients of one invocation. Reddit, Table,
// Store and Alerter may be nil for modes that do not use them.
type Env struct {
	Config  *config.Config
	Reddit  reddit.Client
	Table   sheet.Table
	Store   store.Store
	Alerter *monitoring.Alerter
	// Files downloads remote reference lists.
	Files fetcher.Fetcher
	// Out receives console tables. Defaults to stdout.
	Out io.Writer
	// Progress reports per-collection fetch progress.
	Progress acquire.Progress
	// Sleep replaces every wait (item delay, user delay, retry backoff).
	Sleep resilience.SleepFunc

	closers []func() error
}

// OnClose registers fn to run when the Env is closed.
func (e *Env) OnClose(fn func() error) {
	e.closers = append(e.closers, fn)
}

// Close releases resources in reverse registration order.
func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			zap.L().Warn("pipeline: close failed", zap.Error(err))
		}
	}
	e.closers = nil
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) sleep() resilience.SleepFunc {
	if e.Sleep == nil {
		return resilience.Sleep
	}
	return e.Sleep
}

// writeRetry is the retry policy for every spreadsheet write.
func (e *Env) writeRetry(operation string) resilience.RetryConfig {
	rc := e.Config.Sheets.Retry
	retry := resilience.FromWriteConfig(rc.MaxAttempts, rc.Unit)
	retry.Sleep = e.sleep()
	retry.OnRetry = resilience.RetryLogger("sheets", operation)
	return retry
}

// readSheet reads sheet, creating it when missing.
func (e *Env) readSheet(ctx context.Context, name string) ([][]string, error) {
	rows, err := e.Table.Read(ctx, name)
	if err == nil {
		return rows, nil
	}
	if !sheet.IsNotFound(err) {
		return nil, err
	}
	zap.L().Info("sheet missing, creating it", zap.String("sheet", name))
	if err := e.Table.Ensure(ctx, name); err != nil {
		return nil, err
	}
	return nil, nil
}

func (e *Env) outputPath(name string) string {
	dir := e.Config.Collect.OutputDir
	if dir == "" {
		dir = "outputs"
	}
	return filepath.Join(dir, name)
}

func since(start time.Time) zap.Field {
	return zap.Duration("elapsed", time.Since(start))
}
