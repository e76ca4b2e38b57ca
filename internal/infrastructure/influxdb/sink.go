package influxdb

import (
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/watering"
)

// Measurement names.
const (
	MeasurementMonitoring = "plant_monitoring"
	MeasurementWatering   = "plant_watering"
)

// PointWriter queues points for writing. *Client implements it.
type PointWriter interface {
	WritePoint(p *write.Point)
}

// Sink mirrors readings and demands into InfluxDB. Writes are non-blocking,
// so the listener methods never fail; write errors surface through
// Client.SetOnError.
type Sink struct {
	w PointWriter
}

var (
	_ monitoring.ReadingListener = (*Sink)(nil)
	_ watering.DemandListener    = (*Sink)(nil)
)

// NewSink creates a Sink writing through w.
func NewSink(w PointWriter) *Sink {
	return &Sink{w: w}
}

// OnReading queues a plant_monitoring point. Readings with no measurement
// are skipped because a point needs at least one field.
func (s *Sink) OnReading(r monitoring.Reading) error {
	if p := ReadingPoint(r); p != nil {
		s.w.WritePoint(p)
	}
	return nil
}

// OnDemand queues a plant_watering point.
func (s *Sink) OnDemand(d watering.Demand) error {
	s.w.WritePoint(DemandPoint(d))
	return nil
}

// ReadingPoint converts a reading to a point tagged by plant uid.
// Returns nil when the reading carries no measurement.
func ReadingPoint(r monitoring.Reading) *write.Point {
	fields := make(map[string]interface{}, 2)
	if h, ok := r.Humidity(); ok {
		fields["humidity"] = h
	}
	if t, ok := r.Temperature(); ok {
		fields["temperature"] = t
	}
	if len(fields) == 0 {
		return nil
	}

	return write.NewPoint(
		MeasurementMonitoring,
		map[string]string{"uid": r.PlantUID()},
		fields,
		r.Timestamp(),
	)
}

// DemandPoint converts a demand to a point tagged by plant uid.
func DemandPoint(d watering.Demand) *write.Point {
	return write.NewPoint(
		MeasurementWatering,
		map[string]string{"uid": d.PlantUID},
		map[string]interface{}{
			"id":    d.ID.String(),
			"count": 1,
		},
		d.Timestamp,
	)
}
