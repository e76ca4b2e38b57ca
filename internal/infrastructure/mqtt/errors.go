package mqtt

import "errors"

var (
	// ErrNotConnected is returned while the broker link is down or after Close.
	ErrNotConnected = errors.New("mqtt: broker link is down")

	// ErrConnectionFailed is returned when the first connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: cannot reach broker")

	// ErrPublishFailed is returned when the broker does not acknowledge a publish.
	ErrPublishFailed = errors.New("mqtt: publish not acknowledged")

	// ErrSubscribeFailed is returned when the broker does not acknowledge a subscribe.
	ErrSubscribeFailed = errors.New("mqtt: subscribe not acknowledged")

	// ErrUnsubscribeFailed is returned when the broker does not acknowledge an unsubscribe.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe not acknowledged")

	// ErrInvalidQoS is returned for QoS levels above 2.
	ErrInvalidQoS = errors.New("mqtt: qos must be 0, 1 or 2")

	// ErrInvalidTopic is returned for empty topics, misplaced wildcards and
	// wildcards in publish topics.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")

	// ErrPayloadTooLarge is returned for payloads over maxPayloadSize.
	ErrPayloadTooLarge = errors.New("mqtt: payload too large")

	// ErrNilHandler is returned by Subscribe without a handler.
	ErrNilHandler = errors.New("mqtt: nil message handler")
)
