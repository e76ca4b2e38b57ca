package monitoring

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewReading_Optional(t *testing.T) {
	r := NewReading("ficus", WithHumidity(42))

	if h, ok := r.Humidity(); !ok || h != 42 {
		t.Errorf("Humidity() = %d, %v; want 42, true", h, ok)
	}
	if _, ok := r.Temperature(); ok {
		t.Error("Temperature() reported present")
	}
	if r.PlantUID() != "ficus" {
		t.Errorf("PlantUID() = %q", r.PlantUID())
	}
	if time.Since(r.Timestamp()) > time.Minute {
		t.Errorf("Timestamp() = %v, want about now", r.Timestamp())
	}
}

func TestNewReadingAt_KeepsTimestamp(t *testing.T) {
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	r := NewReadingAt(ts, "basil", WithTemperature(21.5))

	if !r.Timestamp().Equal(ts) {
		t.Errorf("Timestamp() = %v, want %v", r.Timestamp(), ts)
	}
	if r.Timestamp().Location() != time.UTC {
		t.Error("timestamp should be normalised to UTC")
	}
	if c, ok := r.Temperature(); !ok || c != 21.5 {
		t.Errorf("Temperature() = %v, %v", c, ok)
	}
}

func TestReading_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		wantErr bool
	}{
		{"humidity only", NewReading("a", WithHumidity(0)), false},
		{"upper bound", NewReading("a", WithHumidity(100)), false},
		{"no measurement", NewReading("a"), false},
		{"negative humidity", NewReading("a", WithHumidity(-1)), true},
		{"humidity above 100", NewReading("a", WithHumidity(101)), true},
		{"missing uid", NewReading("", WithHumidity(10)), true},
		{"zero timestamp", NewReadingAt(time.Time{}, "a"), true},
		{"before 2000", NewReadingAt(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), "a"), true},
		{"first instant of 2000", NewReadingAt(MinTimestamp, "a"), false},
		{"last instant of 9999", NewReadingAt(MaxTimestamp, "a"), false},
		{"five-digit year", NewReadingAt(time.Unix(1e12, 0), "a"), true},
		{"nan temperature", NewReading("a", WithTemperature(math.NaN())), true},
		{"infinite temperature", NewReading("a", WithTemperature(math.Inf(1))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reading.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidReading) {
				t.Errorf("Validate() error = %v, want ErrInvalidReading", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestReading_MarshalJSON(t *testing.T) {
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	data, err := json.Marshal(NewReadingAt(ts, "ficus", WithHumidity(55)))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got["uid"] != "ficus" || got["humidity"] != float64(55) {
		t.Errorf("encoded = %s", data)
	}
	if _, ok := got["temperature"]; ok {
		t.Errorf("absent temperature should be omitted: %s", data)
	}
}

func TestReading_String(t *testing.T) {
	s := NewReading("mint", WithHumidity(30), WithTemperature(26)).String()
	for _, want := range []string{"mint@", "humidity=30", "temperature=26.0"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
