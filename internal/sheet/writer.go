package sheet

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/resilience"
)

// BatchWriter appends record batches to the data sheet, retrying transient
// failures according to its retry policy.
type BatchWriter struct {
	table Table
	sheet string
	retry resilience.RetryConfig
}

// NewBatchWriter creates a BatchWriter for sheet.
func NewBatchWriter(table Table, sheet string, retry resilience.RetryConfig) *BatchWriter {
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("sheet", "append "+sheet)
	}
	return &BatchWriter{table: table, sheet: sheet, retry: retry}
}

// Append writes records at the state's append offset. When the sheet holds
// no prior rows the header is written first, starting at row 1. On success
// the state's ID set and offset are advanced; on failure it is unchanged.
func (w *BatchWriter) Append(ctx context.Context, state *model.AcquisitionState, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(records)+1)
	row := state.AppendOffset
	if !state.HasPriorRows() {
		rows = append(rows, model.Columns)
		row = 1
	}
	for _, r := range records {
		rows = append(rows, r.Row())
	}

	err := resilience.Do(ctx, w.retry, func(ctx context.Context) error {
		return w.table.Write(ctx, w.sheet, row, rows)
	})
	if err != nil {
		return eris.Wrapf(err, "sheet: append %d records to %s", len(records), w.sheet)
	}

	state.Committed(records)
	zap.L().Info("appended records",
		zap.String("sheet", w.sheet),
		zap.Int("records", len(records)),
		zap.Int("row", row),
		zap.Int("next_offset", state.AppendOffset),
	)
	return nil
}

// ReplaceWithRetry ensures sheet exists and replaces its contents with rows,
// retrying transient failures.
func ReplaceWithRetry(ctx context.Context, table Table, sheet string, rows [][]string, retry resilience.RetryConfig) error {
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("sheet", "replace "+sheet)
	}
	err := resilience.Do(ctx, retry, func(ctx context.Context) error {
		if err := table.Ensure(ctx, sheet); err != nil {
			return err
		}
		return table.Replace(ctx, sheet, rows)
	})
	return eris.Wrapf(err, "sheet: replace %s", sheet)
}

// Records decodes data rows (header first) into typed records. Rows that
// fail validation are logged and counted, not returned.
func Records(rows [][]string) (records []model.Record, invalid int) {
	if len(rows) == 0 {
		return nil, 0
	}
	header := rows[0]
	for i, row := range rows[1:] {
		rec, err := model.RecordFromRow(header, row)
		if err != nil {
			invalid++
			zap.L().Debug("skipping invalid row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, invalid
}
