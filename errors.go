package batchloader

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

var (
	// ErrKeyNotFound reports that the batch fetch succeeded but returned no
	// value for the requested key. Only that key's waiters observe it.
	ErrKeyNotFound = errors.New("batchloader: key not found")

	// ErrInvalidKey reports that the loader's key validator rejected a key.
	// The key never enters a batch.
	ErrInvalidKey = errors.New("batchloader: invalid key")
)

// BatchError is a batch-level fetch failure: the fetch returned a single
// error, panicked, or produced a result that cannot be trusted. Every waiter
// in the batch observes the same BatchError. The loader itself stays usable;
// the next load opens a fresh window.
type BatchError struct {
	Err error
}

func (e *BatchError) Error() string {
	return "batchloader: batch fetch failed: " + e.Err.Error()
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// MalformedResultError reports a fetch result whose shape does not line up
// with the dispatched keys, so per-key correspondence cannot be trusted.
type MalformedResultError struct {
	Keys int
	Data int
	Errs int
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("batchloader: fetch returned %d values and %d errors for %d keys", e.Data, e.Errs, e.Keys)
}

// CombineErrors folds the error column returned by LoadAll into a single
// error. It returns nil when every entry is nil.
func CombineErrors(errs []error) error {
	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
