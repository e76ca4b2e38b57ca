package influxdb

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/watering"
)

type capturingWriter struct {
	points []*write.Point
}

func (c *capturingWriter) WritePoint(p *write.Point) {
	c.points = append(c.points, p)
}

func TestReadingPoint(t *testing.T) {
	ts := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		reading monitoring.Reading
		want    []string
		notWant string
	}{
		{
			name:    "both fields",
			reading: monitoring.NewReadingAt(ts, "ficus", monitoring.WithHumidity(44), monitoring.WithTemperature(21.5)),
			want:    []string{"plant_monitoring,uid=ficus ", "humidity=44i", "temperature=21.5"},
		},
		{
			name:    "humidity only",
			reading: monitoring.NewReadingAt(ts, "basil", monitoring.WithHumidity(10)),
			want:    []string{"uid=basil", "humidity=10i"},
			notWant: "temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ReadingPoint(tt.reading)
			if p == nil {
				t.Fatal("ReadingPoint() = nil")
			}
			line := write.PointToLineProtocol(p, time.Nanosecond)
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("line %q missing %q", line, w)
				}
			}
			if tt.notWant != "" && strings.Contains(line, tt.notWant) {
				t.Errorf("line %q should not contain %q", line, tt.notWant)
			}
			if !p.Time().Equal(ts) {
				t.Errorf("point time = %v, want %v", p.Time(), ts)
			}
		})
	}
}

func TestReadingPoint_NoFields(t *testing.T) {
	if p := ReadingPoint(monitoring.NewReading("ficus")); p != nil {
		t.Errorf("ReadingPoint() = %v, want nil", p)
	}
}

func TestSink(t *testing.T) {
	w := &capturingWriter{}
	sink := NewSink(w)
	id := uuid.New()

	if err := sink.OnReading(monitoring.NewReading("ficus")); err != nil {
		t.Errorf("OnReading() error = %v", err)
	}
	if err := sink.OnReading(monitoring.NewReading("ficus", monitoring.WithHumidity(5))); err != nil {
		t.Errorf("OnReading() error = %v", err)
	}
	if err := sink.OnDemand(watering.Demand{ID: id, Timestamp: time.Now(), PlantUID: "ficus"}); err != nil {
		t.Errorf("OnDemand() error = %v", err)
	}

	if len(w.points) != 2 {
		t.Fatalf("wrote %d points, want 2", len(w.points))
	}
	if w.points[1].Name() != MeasurementWatering {
		t.Errorf("second point = %s, want %s", w.points[1].Name(), MeasurementWatering)
	}
	line := write.PointToLineProtocol(w.points[1], time.Nanosecond)
	if !strings.Contains(line, id.String()) {
		t.Errorf("demand line %q missing id", line)
	}
}
