// Package storage persists readings and watering demands to SQLite.
//
// Store is registered as a listener on both the aggregator and the
// sprinkler, so every accepted reading lands in the monitoring table and
// every demand in the watering table. The status API reads history back
// through the query methods.
//
// The schema is owned by the migrations package.
package storage
