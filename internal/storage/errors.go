package storage

import "errors"

var (
	// ErrNotFound is returned when a query matches no row.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidLimit is returned for a non-positive history limit.
	ErrInvalidLimit = errors.New("storage: invalid limit")
)
