package watering

import (
	"testing"

	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/plant"
)

func TestDecide(t *testing.T) {
	conditional := plant.Plant{UID: "p", Watering: plant.WateringConditional}
	planned := plant.Plant{UID: "p", Watering: plant.WateringPlanned}
	none := plant.Plant{UID: "p", Watering: plant.WateringNone}

	h := monitoring.WithHumidity
	c := monitoring.WithTemperature

	tests := []struct {
		name    string
		plant   plant.Plant
		reading monitoring.Reading
		want    bool
	}{
		{"no temperature at base threshold", conditional, monitoring.NewReading("p", h(50)), true},
		{"no temperature above base threshold", conditional, monitoring.NewReading("p", h(51)), false},
		{"hot at hot threshold", conditional, monitoring.NewReading("p", h(60), c(30)), true},
		{"hot above hot threshold", conditional, monitoring.NewReading("p", h(61), c(30)), false},
		{"exactly hot temperature", conditional, monitoring.NewReading("p", h(55), c(25)), true},
		{"just below hot temperature", conditional, monitoring.NewReading("p", h(55), c(24.9)), false},
		{"cool at base threshold", conditional, monitoring.NewReading("p", h(50), c(10)), true},
		{"bone dry", conditional, monitoring.NewReading("p", h(0)), true},
		{"no humidity", conditional, monitoring.NewReading("p", c(35)), false},
		{"planned never", planned, monitoring.NewReading("p", h(0), c(40)), false},
		{"no_watering never", none, monitoring.NewReading("p", h(0)), false},
		{"unknown method never", plant.Plant{Watering: "mystery"}, monitoring.NewReading("p", h(0)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.plant, tt.reading); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThreshold(t *testing.T) {
	if got := Threshold(monitoring.NewReading("p")); got != BaseHumidityThreshold {
		t.Errorf("Threshold(no temperature) = %d, want %d", got, BaseHumidityThreshold)
	}
	if got := Threshold(monitoring.NewReading("p", monitoring.WithTemperature(HotTemperature))); got != HotHumidityThreshold {
		t.Errorf("Threshold(hot) = %d, want %d", got, HotHumidityThreshold)
	}
}
