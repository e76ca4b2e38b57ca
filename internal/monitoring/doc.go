// Package monitoring defines sensor readings and the Aggregator that
// serializes them.
//
// Adapters build a Reading per observation and hand it to
// Aggregator.Post from their own goroutines. The Aggregator queues
// readings in arrival order, drops those for plants the registry does not
// know, and delivers the rest to every ReadingListener in the order the
// listeners were registered.
//
//	network ─┐
//	serial  ─┼─▶ Aggregator ─▶ store, influx, sprinkler
//	wired   ─┘   (one goroutine)
package monitoring
