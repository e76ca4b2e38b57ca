package eventbus

import "errors"

var (
	// ErrAlreadyStarted is returned by Register and Start once the bus is running.
	ErrAlreadyStarted = errors.New("eventbus: already started")

	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("eventbus: stopped")

	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("eventbus: nil handler")

	// ErrHandlerPanic wraps a recovered handler panic in logs and metrics.
	ErrHandlerPanic = errors.New("eventbus: handler panic")
)
