package fasthdr

import "errors"

var (
	// ErrLUTSize is returned when a LUT blob does not have exactly LUTSize bytes.
	ErrLUTSize = errors.New("invalid lut size")

	// ErrTruncatedFrame is returned in strict mode when the input ends mid-frame.
	ErrTruncatedFrame = errors.New("truncated frame")

	// ErrInvalidGeometry is returned for non-positive or oversized frame dimensions.
	ErrInvalidGeometry = errors.New("invalid frame geometry")

	// ErrUnknownStage is returned when a transform stage name is not registered.
	ErrUnknownStage = errors.New("unknown transform stage")
)
