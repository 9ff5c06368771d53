package chart

import (
	"fmt"
)

// InsufficientReferenceSize is an error type raised at construction when the historical
// reference sample is too small relative to the dimension of the observations.  The
// sample covariance of n observations in p dimensions is singular unless n > p.
type InsufficientReferenceSize struct {
	Size int
	Dim  int
}

func (e InsufficientReferenceSize) Error() string {
	return fmt.Sprintf("reference sample of size %d is too small for dimension %d, need at least %d observations", e.Size, e.Dim, e.Dim+1)
}

// DimensionMismatch is an error type raised when an incoming observation does not match
// the dimension of the reference sample.  It indicates an upstream data pipeline defect,
// so the run is aborted rather than skipping the observation.
type DimensionMismatch struct {
	Step int
	Got  int
	Want int
}

func (e DimensionMismatch) Error() string {
	return fmt.Sprintf("step %d: observation has dimension %d, chart dimension is %d", e.Step, e.Got, e.Want)
}

// StepError wraps a fatal error raised while processing one monitoring step with the
// time index at which the run stopped.  The statistic sequence recorded before the
// failing step remains valid and available.
type StepError struct {
	Step int
	Err  error
}

func (e StepError) Error() string {
	return fmt.Sprintf("monitoring stopped at step %d: %v", e.Step, e.Err)
}

func (e StepError) Unwrap() error {
	return e.Err
}
