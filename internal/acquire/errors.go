package acquire

import (
	"context"
	"errors"
	"fmt"

	"github.com/sells-group/misinfo-cli/internal/model"
)

// Cause says what a fetch failure means for the run.
type Cause int

const (
	// Skip abandons the collection and continues with the next one.
	Skip Cause = iota
	// Abort stops the whole run.
	Abort
)

func (c Cause) String() string {
	if c == Abort {
		return "abort"
	}
	return "skip"
}

// FetchError is a failure while fetching one collection.
type FetchError struct {
	Collection model.TrackedCollection
	Cause      Cause
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("acquire: fetch r/%s (%s): %v", e.Collection.Name, e.Cause, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError classifies err: cancellation aborts, anything else skips.
func NewFetchError(tc model.TrackedCollection, err error) *FetchError {
	cause := Skip
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		cause = Abort
	}
	return &FetchError{Collection: tc, Cause: cause, Err: err}
}
