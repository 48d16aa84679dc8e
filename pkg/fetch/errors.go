package fetch

import (
	"errors"
	"fmt"
)

// Common errors returned by the orchestrator.
var (
	// ErrRateLimited signals that the provider refused a request due
	// to rate limiting. Data-source adapters return (or wrap) this to
	// make a batch eligible for retry and fallback.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrInvalidRange is returned for a range whose start is after
	// its end.
	ErrInvalidRange = errors.New("invalid date range: start after end")
)

// FailedError wraps a non-rate-limit fetch failure. These are never
// retried; the orchestration aborts with the partial result collected
// so far.
type FailedError struct {
	Batch DateRange
	Err   error
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	return fmt.Sprintf("fetch failed for batch %s: %v", e.Batch, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FailedError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when retries and the single fallback
// escalation were both exhausted for a batch. The partial result up to
// the failing batch is available on the Result returned alongside it.
type ExhaustedError struct {
	// Batch is the first unrecoverable batch.
	Batch DateRange

	// Attempts is the total number of attempts made on the batch.
	Attempts int

	// Err is the last rate-limit error observed.
	Err error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetch exhausted after %d attempts for batch %s: %v",
		e.Attempts, e.Batch, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
