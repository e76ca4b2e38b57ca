// Package adapters holds what the transport adapters share: the Poster
// contract towards the aggregator, the Adapter lifecycle run by main, and
// the JSON plant message used on UDP and MQTT.
//
// Each adapter lives in its own subpackage (network, serial, wired,
// mqttin), owns one goroutine, turns wire input into monitoring.Reading
// values and posts them. Malformed input is logged and dropped at the
// adapter; it never reaches the bus.
package adapters
