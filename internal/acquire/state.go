// Package acquire builds the acquisition state from stored records and
// fetches new, deduplicated, classified records from tracked collections.
package acquire

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// BuildState derives the acquisition state from the data sheet rows
// (header first). The lookback is month when stored records span more than
// one calendar year, else year.
func BuildState(rows [][]string) *model.AcquisitionState {
	state := model.NewAcquisitionState()
	if len(rows) == 0 {
		zap.L().Info("no prior data, starting a fresh sheet")
		return state
	}

	header, data := rows[0], rows[1:]
	state.AppendOffset = len(data) + 2

	idCol := columnIndex(header, "ID")
	if idCol < 0 {
		zap.L().Info("no prior data: data sheet has no ID column",
			zap.Int("rows", len(data)),
		)
		return state
	}

	dateCol := columnIndex(header, "Date Created")
	years := make(map[int]struct{})
	for i, row := range data {
		if id := cell(row, idCol); id != "" {
			state.IDs[id] = struct{}{}
		}
		if dateCol < 0 {
			continue
		}
		raw := cell(row, dateCol)
		if raw == "" {
			continue
		}
		t, err := model.ParseDate(raw)
		if err != nil {
			zap.L().Debug("ignoring unparseable date", zap.Int("row", i+2), zap.String("value", raw))
			continue
		}
		years[t.Year()] = struct{}{}
	}

	if len(years) > 1 {
		state.Lookback = model.LookbackMonth
	}

	zap.L().Info("built acquisition state",
		zap.Int("stored_ids", len(state.IDs)),
		zap.String("lookback", string(state.Lookback)),
		zap.Int("append_offset", state.AppendOffset),
	)
	return state
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
