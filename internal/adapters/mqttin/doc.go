// Package mqttin ingests plant readings published on the broker by remote
// peripherals, on planteur/plant, in the same JSON form the network
// adapter accepts.
package mqttin
