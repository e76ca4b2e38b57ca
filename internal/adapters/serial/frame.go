package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/plant"
)

const (
	// GatewayAddress is the radio address of the gateway.
	GatewayAddress uint8 = 0

	// FrameTypePlant marks a frame carrying a plant reading.
	FrameTypePlant uint8 = 1

	headerSize = 4
)

// Frame is one radio frame.
type Frame struct {
	Dest    uint8
	Src     uint8
	Type    uint8
	Payload []byte
}

// ReadFrame reads the next frame from r.
//
// Returns io.EOF when r ends cleanly between frames and ErrTruncated when
// it ends inside one.
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, fmt.Errorf("%w: header: %w", ErrTruncated, err)
		}
		return Frame{}, err
	}

	f := Frame{Dest: hdr[0], Src: hdr[1], Type: hdr[2]}
	length := int(hdr[3])
	if length == 0 {
		return f, nil
	}

	f.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, fmt.Errorf("%w: payload: want %d bytes: %w", ErrTruncated, length, err)
		}
		return Frame{}, err
	}
	return f, nil
}

// Encode returns the wire form of f. Payloads over 255 bytes are cut.
func (f Frame) Encode() []byte {
	payload := f.Payload
	if len(payload) > 255 { //nolint:mnd // one length byte
		payload = payload[:255]
	}
	buf := make([]byte, headerSize+len(payload))
	buf[0] = f.Dest
	buf[1] = f.Src
	buf[2] = f.Type
	buf[3] = uint8(len(payload)) // #nosec G115 -- capped above
	copy(buf[headerSize:], payload)
	return buf
}

// String renders f for logs.
func (f Frame) String() string {
	return fmt.Sprintf("dest=%d src=%d type=%d payload=%v", f.Dest, f.Src, f.Type, f.Payload)
}

// Resolver maps a frame source to a plant. *plant.Registry implements it.
type Resolver interface {
	LookupSerial(id uint8) (plant.Plant, bool)
}

// Decode turns an accepted plant frame into a reading stamped with now.
func Decode(f Frame, res Resolver, now time.Time) (monitoring.Reading, error) {
	if f.Dest != GatewayAddress {
		return monitoring.Reading{}, fmt.Errorf("%w: dest %d", ErrNotForGateway, f.Dest)
	}
	if f.Type != FrameTypePlant {
		return monitoring.Reading{}, fmt.Errorf("%w: %d", ErrUnsupportedType, f.Type)
	}
	p, ok := res.LookupSerial(f.Src)
	if !ok {
		return monitoring.Reading{}, fmt.Errorf("%w: src %d", ErrUnknownSource, f.Src)
	}
	if len(f.Payload) == 0 {
		return monitoring.Reading{}, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}

	opts := []monitoring.Option{monitoring.WithHumidity(int(f.Payload[0]))}
	if len(f.Payload) > 1 {
		opts = append(opts, monitoring.WithTemperature(float64(int8(f.Payload[1])))) // #nosec G115 -- signed byte on the wire
	}

	r := monitoring.NewReadingAt(now, p.UID, opts...)
	if err := r.Validate(); err != nil {
		return monitoring.Reading{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return r, nil
}
