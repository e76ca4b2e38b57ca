// Package notify publishes watering demands to the broker so valve
// controllers can act on them.
//
// The Notifier is a demand listener. Each demand is encoded as
//
//	{"watering":{"id":"<uuid>","timestamp":"<RFC 3339>","uid":"<plant uid>"}}
//
// and published, not retained, on planteur/watering. Publishing goes
// through a circuit breaker: after FailureThreshold consecutive failures
// the breaker opens and demands are rejected immediately (logged and
// counted) until OpenTimeout elapses. This keeps a dead broker from
// stalling the demand goroutine for the publish timeout on every demand.
package notify
