package monitoring

import (
	"context"
	"fmt"

	"github.com/planteur/planteur-core/internal/eventbus"
	"github.com/planteur/planteur-core/internal/plant"
)

// BusName labels the reading bus in logs and metrics.
const BusName = "readings"

// ReadingListener consumes accepted readings. OnReading runs on the
// aggregator goroutine and must return quickly; a returned error is logged
// and counted but does not stop delivery.
type ReadingListener interface {
	OnReading(Reading) error
}

// ReadingListenerFunc adapts a function to ReadingListener.
type ReadingListenerFunc func(Reading) error

// OnReading calls f(r).
func (f ReadingListenerFunc) OnReading(r Reading) error { return f(r) }

// Logger defines the logging interface used by the Aggregator.
type Logger = eventbus.Logger

// Options configures an Aggregator.
type Options struct {
	// QueueSize bounds the reading queue (default 256).
	QueueSize int
	Logger    Logger
	Metrics   *eventbus.Metrics
}

// Aggregator serializes readings from every adapter into one ordered stream
// and fans accepted readings out to listeners.
type Aggregator struct {
	registry *plant.Registry
	bus      *eventbus.Bus[Reading]
}

// NewAggregator creates an Aggregator that accepts readings for plants in registry.
func NewAggregator(registry *plant.Registry, opts Options) *Aggregator {
	a := &Aggregator{registry: registry}
	a.bus = eventbus.New(BusName, eventbus.Options[Reading]{
		QueueSize: opts.QueueSize,
		Filter:    a.knownPlant,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	})
	return a
}

// knownPlant rejects readings whose uid is not in the registry.
func (a *Aggregator) knownPlant(r Reading) error {
	if _, ok := a.registry.Lookup(r.PlantUID()); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlant, r.PlantUID())
	}
	return nil
}

// RegisterListener appends l to the delivery list. name labels failures in
// logs and metrics. Fails with eventbus.ErrAlreadyStarted after Start.
func (a *Aggregator) RegisterListener(name string, l ReadingListener) error {
	if l == nil {
		return fmt.Errorf("%w: %s", eventbus.ErrNilHandler, name)
	}
	return a.bus.Register(name, l.OnReading)
}

// Post hands a reading to the aggregator. It blocks while the queue is full
// and drops the reading once the aggregator has stopped.
func (a *Aggregator) Post(r Reading) {
	a.bus.Post(r)
}

// Start launches the delivery goroutine.
func (a *Aggregator) Start(ctx context.Context) error {
	return a.bus.Start(ctx)
}

// Stop delivers readings already queued, then stops.
func (a *Aggregator) Stop() {
	a.bus.Stop()
}

// Stats returns the reading bus counters.
func (a *Aggregator) Stats() eventbus.Stats {
	return a.bus.Stats()
}
