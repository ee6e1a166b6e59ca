/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the pipeline's error taxonomy. Every condition Run can
  stop for is a distinct exported sentinel, checked with errors.Is (or the
  IsXxx helpers below) rather than string matching, in the manner of the
  teacher's per-package sentinels (mts.ErrInvalidLen, mts.ErrNoPrograms).

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import "github.com/pkg/errors"

var (
	// ErrIO means a read from the source or a write to the sink failed,
	// as opposed to the ES data itself being at fault.
	ErrIO = errors.New("pipeline: i/o error")

	// ErrMalformedInput means the ES byte stream did not conform to the
	// startcode framing this module depends on, e.g. a trailing startcode
	// with no identifier byte following it.
	ErrMalformedInput = errors.New("pipeline: malformed input")

	// ErrUnknownStreamType means auto-detection returned Unknown and the
	// caller supplied no forced type.
	ErrUnknownStreamType = errors.New("pipeline: unknown stream type and none was forced")

	// ErrInvalidConfig means the Config failed validation: colliding or
	// reserved PIDs, or a negative MaxUnits.
	ErrInvalidConfig = errors.New("pipeline: invalid configuration")

	// ErrBudgetReached is returned by Run when Config.MaxUnits is reached.
	// It is not a failure: a caller that does not care about the unit
	// budget can treat it as a clean stop by checking errors.Is(err,
	// ErrBudgetReached) (see IsBudgetReached).
	ErrBudgetReached = errors.New("pipeline: unit budget reached")
)

// IsIO reports whether err is, or wraps, a source/sink I/O failure.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsUnknownStreamType reports whether err is, or wraps, the stream-type
// classification failure.
func IsUnknownStreamType(err error) bool {
	return errors.Is(err, ErrUnknownStreamType)
}

// IsInvalidConfig reports whether err is, or wraps, a configuration
// validation failure.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsMalformedInput reports whether err is, or wraps, a scanning failure
// caused by input with broken startcode framing.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsBudgetReached reports whether err is, or wraps, a clean stop caused by
// Config.MaxUnits being reached.
func IsBudgetReached(err error) bool {
	return errors.Is(err, ErrBudgetReached)
}
