package monitoring

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Humidity bounds, in percent.
const (
	MinHumidity = 0
	MaxHumidity = 100
)

// Timestamp window. Readings outside it are rejected before they reach the
// bus; the store's fixed-width layout holds four-digit years only.
var (
	MinTimestamp = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTimestamp = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// Reading is one normalized sensor observation for a plant.
//
// Humidity and temperature are optional: a peripheral may report either.
// Readings are values and never change after construction.
type Reading struct {
	timestamp time.Time
	plantUID  string

	humidity    int
	hasHumidity bool

	temperature    float64
	hasTemperature bool
}

// Option sets an optional measurement on a new Reading.
type Option func(*Reading)

// WithHumidity sets the relative soil humidity in percent.
func WithHumidity(h int) Option {
	return func(r *Reading) {
		r.humidity = h
		r.hasHumidity = true
	}
}

// WithTemperature sets the temperature in degrees Celsius.
func WithTemperature(c float64) Option {
	return func(r *Reading) {
		r.temperature = c
		r.hasTemperature = true
	}
}

// NewReading creates a Reading stamped with the current time.
func NewReading(plantUID string, opts ...Option) Reading {
	return NewReadingAt(time.Now(), plantUID, opts...)
}

// NewReadingAt creates a Reading with an explicit timestamp, for peripherals
// that report their own clock.
func NewReadingAt(ts time.Time, plantUID string, opts ...Option) Reading {
	r := Reading{timestamp: ts.UTC(), plantUID: plantUID}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Timestamp returns when the observation was made.
func (r Reading) Timestamp() time.Time { return r.timestamp }

// PlantUID returns the uid of the observed plant.
func (r Reading) PlantUID() string { return r.plantUID }

// Humidity returns the humidity and whether it was reported.
func (r Reading) Humidity() (int, bool) { return r.humidity, r.hasHumidity }

// Temperature returns the temperature and whether it was reported.
func (r Reading) Temperature() (float64, bool) { return r.temperature, r.hasTemperature }

// Validate checks the reading is fit for the bus. Adapters call it and drop
// readings that fail.
func (r Reading) Validate() error {
	if r.plantUID == "" {
		return fmt.Errorf("%w: missing plant uid", ErrInvalidReading)
	}
	if r.timestamp.IsZero() {
		return fmt.Errorf("%w: %s: missing timestamp", ErrInvalidReading, r.plantUID)
	}
	if r.timestamp.Before(MinTimestamp) || r.timestamp.After(MaxTimestamp) {
		return fmt.Errorf("%w: %s: timestamp %s outside %d..%d",
			ErrInvalidReading, r.plantUID, r.timestamp.Format(time.RFC3339), MinTimestamp.Year(), MaxTimestamp.Year())
	}
	if r.hasHumidity && (r.humidity < MinHumidity || r.humidity > MaxHumidity) {
		return fmt.Errorf("%w: %s: humidity %d outside %d..%d",
			ErrInvalidReading, r.plantUID, r.humidity, MinHumidity, MaxHumidity)
	}
	if r.hasTemperature && (math.IsNaN(r.temperature) || math.IsInf(r.temperature, 0)) {
		return fmt.Errorf("%w: %s: temperature is not a finite number", ErrInvalidReading, r.plantUID)
	}
	return nil
}

// String renders the reading for logs.
func (r Reading) String() string {
	s := fmt.Sprintf("%s@%s", r.plantUID, r.timestamp.Format(time.RFC3339))
	if r.hasHumidity {
		s += fmt.Sprintf(" humidity=%d", r.humidity)
	}
	if r.hasTemperature {
		s += fmt.Sprintf(" temperature=%.1f", r.temperature)
	}
	return s
}

// readingJSON is the wire and API shape of a Reading.
type readingJSON struct {
	Timestamp   time.Time `json:"timestamp"`
	UID         string    `json:"uid"`
	Humidity    *int      `json:"humidity,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// MarshalJSON encodes absent measurements as omitted fields.
func (r Reading) MarshalJSON() ([]byte, error) {
	out := readingJSON{Timestamp: r.timestamp, UID: r.plantUID}
	if r.hasHumidity {
		h := r.humidity
		out.Humidity = &h
	}
	if r.hasTemperature {
		t := r.temperature
		out.Temperature = &t
	}
	return json.Marshal(out)
}
