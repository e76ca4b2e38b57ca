// Package wired polls sensors wired directly to the gateway.
//
// A Sensor is a synchronous value source; the adapter polls it on a fixed
// interval and posts one reading per poll. SawtoothSensor stands in for
// real GPIO/ADC hardware and cycles humidity 0, 1, ... 100, 0, ...
package wired
