// Package api implements the read-only HTTP status server for Planteur Core.
//
// This package provides:
//   - Plant registry listing and lookup
//   - Recent reading and watering demand history per plant
//   - Component health and event bus statistics
//   - Prometheus exposition on /metrics
//
// # Graceful Degradation
//
// Every dependency except the logger and registry is optional. Without a
// history store the readings and demands endpoints answer 503; without a
// gatherer /metrics is not mounted.
//
// There are no mutating endpoints. Plants are described statically in the
// plant file and demands only ever come from the sprinkler.
package api
