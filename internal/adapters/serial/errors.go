package serial

import "errors"

var (
	// ErrTruncated is returned when the stream ends inside a frame.
	ErrTruncated = errors.New("serial: truncated frame")

	// ErrNotForGateway is returned for frames addressed to another node.
	ErrNotForGateway = errors.New("serial: frame not addressed to gateway")

	// ErrUnsupportedType is returned for frame types other than plant.
	ErrUnsupportedType = errors.New("serial: unsupported frame type")

	// ErrUnknownSource is returned when src matches no registered plant.
	ErrUnknownSource = errors.New("serial: unknown source")

	// ErrInvalidPayload is returned when a plant frame payload is unusable.
	ErrInvalidPayload = errors.New("serial: invalid payload")

	// ErrOpen is returned when the port cannot be opened.
	ErrOpen = errors.New("serial: open failed")
)
