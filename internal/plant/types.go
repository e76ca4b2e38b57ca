package plant

import (
	"fmt"
	"strings"
)

// Plant is the identity and watering policy of one plant.
// Values are copied out of the Registry; mutating one has no effect on it.
type Plant struct {
	UID        string         `json:"uid"`
	Name       string         `json:"name"`
	Connection ConnectionType `json:"connection"`
	Watering   WateringMethod `json:"watering"`

	// SerialID is the radio source address of a serial plant (1..255).
	// Zero for plants on other transports.
	SerialID uint8 `json:"serial_id,omitempty"`
}

// ConnectionType is the transport a plant's peripheral reports over.
type ConnectionType string

// ConnectionType constants.
const (
	ConnectionNetwork ConnectionType = "network"
	ConnectionWired   ConnectionType = "wired"
	ConnectionSerial  ConnectionType = "serial"
)

// AllConnections returns all valid connection values.
func AllConnections() []ConnectionType {
	return []ConnectionType{ConnectionNetwork, ConnectionWired, ConnectionSerial}
}

// ParseConnection converts a description value to a ConnectionType.
// "xbee" is accepted as a legacy alias of serial.
func ParseConnection(s string) (ConnectionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "network":
		return ConnectionNetwork, nil
	case "wired":
		return ConnectionWired, nil
	case "serial", "xbee":
		return ConnectionSerial, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidConnection, s)
}

// Valid reports whether c is one of the defined connection types.
func (c ConnectionType) Valid() bool {
	switch c {
	case ConnectionNetwork, ConnectionWired, ConnectionSerial:
		return true
	}
	return false
}

func (c ConnectionType) String() string { return string(c) }

// WateringMethod describes how a plant gets watered.
type WateringMethod string

// WateringMethod constants.
const (
	// WateringPlanned plants are watered on a schedule, never from readings.
	WateringPlanned WateringMethod = "planned"

	// WateringConditional plants are watered when readings say the soil is dry.
	WateringConditional WateringMethod = "conditional"

	// WateringNone plants are monitored only.
	WateringNone WateringMethod = "no_watering"
)

// AllWateringMethods returns all valid watering values.
func AllWateringMethods() []WateringMethod {
	return []WateringMethod{WateringPlanned, WateringConditional, WateringNone}
}

// ParseWatering converts a description value to a WateringMethod.
// "nowatering" is accepted as a legacy alias of no_watering.
func ParseWatering(s string) (WateringMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planned":
		return WateringPlanned, nil
	case "conditional":
		return WateringConditional, nil
	case "no_watering", "nowatering":
		return WateringNone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWatering, s)
}

// Valid reports whether w is one of the defined watering methods.
func (w WateringMethod) Valid() bool {
	switch w {
	case WateringPlanned, WateringConditional, WateringNone:
		return true
	}
	return false
}

func (w WateringMethod) String() string { return string(w) }
