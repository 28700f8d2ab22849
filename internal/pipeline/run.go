package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// Record runs fn as one ledger entry of the given mode: the run is created
// before fn and completed or failed after it, then alerts are sent for the
// finished run. Without a usable store fn still runs, unrecorded.
func (e *Env) Record(ctx context.Context, mode model.RunMode, fn func(ctx context.Context) (*model.RunResult, error)) (*model.Run, error) {
	run := &model.Run{Mode: mode, Status: model.RunStatusRunning}
	if e.Store != nil {
		created, err := e.Store.CreateRun(ctx, mode)
		if err != nil {
			zap.L().Warn("pipeline: ledger unavailable, running unrecorded", zap.Error(err))
		} else {
			run = created
		}
	}
	log := zap.L().With(zap.String("run_id", run.ID), zap.String("mode", string(mode)))
	log.Info("run started")

	result, runErr := fn(ctx)
	run.Result = result
	run.Status = model.RunStatusComplete
	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	}

	// Ledger updates and alerts outlive a cancelled run context.
	finishCtx := context.WithoutCancel(ctx)
	if run.ID != "" {
		var err error
		if runErr != nil {
			err = e.Store.FailRun(finishCtx, run.ID, runErr, result)
		} else {
			err = e.Store.CompleteRun(finishCtx, run.ID, result)
		}
		if err != nil {
			log.Warn("pipeline: update ledger", zap.Error(err))
		}
	}

	if runErr != nil {
		log.Error("run failed", zap.Error(runErr))
	} else {
		log.Info("run complete")
	}

	if e.Alerter != nil {
		e.Alerter.Notify(finishCtx, run)
	}
	return run, runErr
}
