package logic

import "errors"

var (
	// ErrInvalidGroupSize is returned when the requested group size is below one.
	ErrInvalidGroupSize = errors.New("group size must be at least 1")

	// ErrUnknownMode is returned when a split mode string or value is not recognized.
	ErrUnknownMode = errors.New("unknown split mode")

	// ErrUnknownDivision is returned when a division string is not recognized.
	ErrUnknownDivision = errors.New("unknown division")
)
