package engine

import (
	"errors"
	"fmt"
)

// SimError is an aborting simulation failure. Aborting failures stop the
// run; recoverable anomalies (clamped frames, unresolved fallbacks) become
// event annotations instead and never raise a SimError.
type SimError struct {
	// Code identifies the failure category.
	Code SimErrorCode

	// Message is a human-readable description.
	Message string

	// Row is the index of the offending input row, -1 when the failure
	// is not attributable to a single row.
	Row int

	// Frame is the simulation frame at the time of failure.
	Frame int
}

// SimErrorCode categorizes aborting failures.
type SimErrorCode string

const (
	// ErrCodeNoAnchor: a row reached the scheduler without a resolvable
	// anchor.
	ErrCodeNoAnchor SimErrorCode = "NO_ANCHOR"

	// ErrCodeTimingLoop: the transition/re-estimate loop exceeded the
	// step bound without converging.
	ErrCodeTimingLoop SimErrorCode = "TIMING_LOOP"

	// ErrCodeZeroRate: a gauge-target anchor needs accrual but the
	// current rate is not positive.
	ErrCodeZeroRate SimErrorCode = "ZERO_RATE"

	// ErrCodeForwardLabel: a label anchor with an offset references a
	// label that has no resolved frame yet.
	ErrCodeForwardLabel SimErrorCode = "FORWARD_LABEL"

	// ErrCodeBuffOverflow: active individually-targeted intervals exceed
	// the participant count.
	ErrCodeBuffOverflow SimErrorCode = "BUFF_OVERFLOW"
)

// Error implements the error interface.
func (e *SimError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s: %s (row=%d, frame=%d)", e.Code, e.Message, e.Row, e.Frame)
	}
	return fmt.Sprintf("%s: %s (frame=%d)", e.Code, e.Message, e.Frame)
}

func newSimError(code SimErrorCode, row, frame int, format string, args ...any) *SimError {
	return &SimError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Row:     row,
		Frame:   frame,
	}
}

func errCodeIs(err error, code SimErrorCode) bool {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsTimingLoopError reports whether err is an unresolvable-timing-loop
// failure. Handles wrapped errors.
func IsTimingLoopError(err error) bool { return errCodeIs(err, ErrCodeTimingLoop) }

// IsZeroRateError reports whether err is a zero-accrual-rate failure.
func IsZeroRateError(err error) bool { return errCodeIs(err, ErrCodeZeroRate) }

// IsForwardLabelError reports whether err is an unresolved-forward-label
// failure.
func IsForwardLabelError(err error) bool { return errCodeIs(err, ErrCodeForwardLabel) }

// IsBuffOverflowError reports whether err is a too-many-targeted-buffs
// failure.
func IsBuffOverflowError(err error) bool { return errCodeIs(err, ErrCodeBuffOverflow) }
