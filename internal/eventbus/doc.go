// Package eventbus provides the ordered, single-consumer event queue that
// backs both the reading aggregator and the sprinkler's demand stream.
//
// A Bus accepts events from any number of producer goroutines through
// Post, and one consumer goroutine started by Start delivers each event,
// in dequeue order, to every registered handler in registration order.
//
// # Guarantees
//
//   - Handlers observe events in exactly the same order.
//   - Events from a single producer keep their relative order.
//   - A handler that returns an error or panics is logged and counted;
//     the next handler still receives the event and the next event
//     is still delivered.
//   - The queue is bounded. Post blocks while it is full, so slow
//     handlers push back on producers instead of growing memory.
//   - Stop (or cancelling the Start context) delivers everything already
//     queued before returning. Posts after that are dropped and logged.
//
// Handlers are wired once before Start; registration afterwards fails
// with ErrAlreadyStarted.
//
// # Usage
//
//	bus := eventbus.New[monitoring.Reading]("readings", eventbus.Options[monitoring.Reading]{
//	    QueueSize: 256,
//	    Logger:    logger,
//	})
//	_ = bus.Register("store", store.OnReading)
//	_ = bus.Start(ctx)
//	defer bus.Stop()
//	bus.Post(reading)
package eventbus
