package model

// Lookback is the time window used when ranking a subreddit's top
// submissions.
type Lookback string

const (
	LookbackYear  Lookback = "year"
	LookbackMonth Lookback = "month"
)

// AcquisitionState is what a run knows about the data sheet before it
// fetches anything: the submission IDs already stored, the lookback window
// and the row where new records are appended.
type AcquisitionState struct {
	IDs          map[string]struct{}
	Lookback     Lookback
	AppendOffset int
}

// NewAcquisitionState returns an empty state for an uninitialized sheet.
func NewAcquisitionState() *AcquisitionState {
	return &AcquisitionState{
		IDs:          make(map[string]struct{}),
		Lookback:     LookbackYear,
		AppendOffset: 2,
	}
}

// Has reports whether id is already stored.
func (s *AcquisitionState) Has(id string) bool {
	_, ok := s.IDs[id]
	return ok
}

// HasPriorRows reports whether the sheet already holds a header and data,
// in which case new rows are appended without rewriting the header.
func (s *AcquisitionState) HasPriorRows() bool {
	return s.AppendOffset > 2
}

// Committed records a successful write of records.
func (s *AcquisitionState) Committed(records []Record) {
	for _, r := range records {
		s.IDs[r.ID] = struct{}{}
	}
	s.AppendOffset += len(records)
}
