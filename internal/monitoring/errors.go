package monitoring

import "errors"

var (
	// ErrUnknownPlant is the drop reason for readings whose uid is not registered.
	ErrUnknownPlant = errors.New("monitoring: unknown plant")

	// ErrInvalidReading is returned when a reading fails validation.
	ErrInvalidReading = errors.New("monitoring: invalid reading")
)
