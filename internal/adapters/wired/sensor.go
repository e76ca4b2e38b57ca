package wired

import (
	"context"
	"sync"

	"github.com/planteur/planteur-core/internal/monitoring"
)

// Sample is one sensor measurement. Nil fields were not measured.
type Sample struct {
	Humidity    *int
	Temperature *float64
}

// Sensor is polled by the adapter. Read should return quickly.
type Sensor interface {
	Read(ctx context.Context) (Sample, error)
}

// SensorFunc adapts a function to Sensor.
type SensorFunc func(ctx context.Context) (Sample, error)

// Read calls f(ctx).
func (f SensorFunc) Read(ctx context.Context) (Sample, error) { return f(ctx) }

// SawtoothSensor reports humidity rising by one per read and wrapping after
// 100. It never reports a temperature.
type SawtoothSensor struct {
	mu   sync.Mutex
	next int
}

// NewSawtoothSensor creates a sensor starting at 0.
func NewSawtoothSensor() *SawtoothSensor {
	return &SawtoothSensor{}
}

// Read implements Sensor.
func (s *SawtoothSensor) Read(context.Context) (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.next
	s.next++
	if s.next > monitoring.MaxHumidity {
		s.next = monitoring.MinHumidity
	}
	return Sample{Humidity: &h}, nil
}
