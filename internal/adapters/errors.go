package adapters

import "errors"

// ErrMalformed is returned when wire input cannot be decoded into a reading.
var ErrMalformed = errors.New("adapters: malformed input")
