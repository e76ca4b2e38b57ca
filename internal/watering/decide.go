package watering

import (
	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/plant"
)

// Decision thresholds. Humidity at or below the threshold triggers watering.
const (
	// HotTemperature is the temperature (°C) from which the hot threshold applies.
	HotTemperature = 25.0

	HotHumidityThreshold  = 60
	BaseHumidityThreshold = 50
)

// Decide reports whether reading r calls for watering plant p.
func Decide(p plant.Plant, r monitoring.Reading) bool {
	switch p.Watering {
	case plant.WateringConditional:
		return isDry(r)
	case plant.WateringPlanned, plant.WateringNone:
		return false
	}
	return false
}

// isDry reports whether the reading's humidity is at or below its threshold.
// A reading without humidity cannot be judged.
func isDry(r monitoring.Reading) bool {
	humidity, ok := r.Humidity()
	if !ok {
		return false
	}
	return humidity <= Threshold(r)
}

// Threshold returns the humidity threshold that applies to r.
func Threshold(r monitoring.Reading) int {
	if t, ok := r.Temperature(); ok && t >= HotTemperature {
		return HotHumidityThreshold
	}
	return BaseHumidityThreshold
}
