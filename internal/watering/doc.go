// Package watering turns readings into watering demands.
//
// The Sprinkler listens on the reading aggregator. For every reading of a
// conditionally watered plant it applies Decide and, when the soil is dry
// enough, posts a Demand onto its own queue. A second goroutine fans those
// demands out to DemandListeners (persistence, time series, broker
// notification).
//
// # Decision rule
//
//	threshold = 60 if temperature is reported and >= 25 °C, else 50
//	demand    = humidity is reported and humidity <= threshold
//
// Planned and no_watering plants never produce demands. Each reading is
// judged on its own; there is no debouncing across readings.
package watering
