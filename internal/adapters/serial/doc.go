// Package serial reads plant frames from a radio module on a serial port.
//
// Frame layout, one byte per field, no checksum or delimiter:
//
//	dest(1) src(1) type(1) length(1) payload(length)
//
// A frame is accepted when dest is the gateway (0), type is FrameTypePlant
// (1) and src is the serial_id of a registered plant. The payload holds the
// humidity in percent followed by an optional temperature in degrees
// Celsius as a signed byte. Rejected frames are logged and dropped.
//
// The port is opened with go.bug.st/serial and reopened with exponential
// backoff after a read error, so unplugging the radio does not stop the
// gateway.
package serial
