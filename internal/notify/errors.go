package notify

import "errors"

var (
	// ErrBreakerOpen is returned while the circuit breaker rejects publishes.
	ErrBreakerOpen = errors.New("notify: circuit breaker open")

	// ErrPublish wraps a publish failure reported by the broker client.
	ErrPublish = errors.New("notify: publish failed")
)
