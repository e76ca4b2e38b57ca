package watering

import (
	"context"
	"fmt"
	"time"

	"github.com/planteur/planteur-core/internal/eventbus"
	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/plant"
)

// BusName labels the demand bus in logs and metrics.
const BusName = "demands"

// DemandListener consumes watering demands. OnDemand runs on the demand
// goroutine; a returned error is logged and counted only.
type DemandListener interface {
	OnDemand(Demand) error
}

// DemandListenerFunc adapts a function to DemandListener.
type DemandListenerFunc func(Demand) error

// OnDemand calls f(d).
func (f DemandListenerFunc) OnDemand(d Demand) error { return f(d) }

// Options configures a Sprinkler.
type Options struct {
	// QueueSize bounds the demand queue (default 256).
	QueueSize int
	Logger    eventbus.Logger
	Metrics   *eventbus.Metrics

	// Now overrides the demand clock. Tests only.
	Now func() time.Time
}

// Sprinkler evaluates readings against plant policy and emits demands.
// It implements monitoring.ReadingListener.
type Sprinkler struct {
	registry *plant.Registry
	bus      *eventbus.Bus[Demand]
	logger   eventbus.Logger
	now      func() time.Time
}

var _ monitoring.ReadingListener = (*Sprinkler)(nil)

// NewSprinkler creates a Sprinkler deciding for the plants in registry.
func NewSprinkler(registry *plant.Registry, opts Options) *Sprinkler {
	s := &Sprinkler{
		registry: registry,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.bus = eventbus.New(BusName, eventbus.Options[Demand]{
		QueueSize: opts.QueueSize,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	})
	return s
}

// OnReading applies the decision rule to r and posts a Demand when it says so.
// A reading for a plant missing from the registry is logged and ignored.
func (s *Sprinkler) OnReading(r monitoring.Reading) error {
	p, ok := s.registry.Lookup(r.PlantUID())
	if !ok {
		s.logger.Warn("reading for unregistered plant ignored", "uid", r.PlantUID())
		return nil
	}
	if !Decide(p, r) {
		return nil
	}

	d := newDemand(p.UID, s.now())
	humidity, _ := r.Humidity()
	s.logger.Info("watering demanded", "uid", p.UID, "humidity", humidity, "threshold", Threshold(r), "demand_id", d.ID)
	s.bus.Post(d)
	return nil
}

// RegisterListener appends l to the demand delivery list.
// Fails with eventbus.ErrAlreadyStarted after Start.
func (s *Sprinkler) RegisterListener(name string, l DemandListener) error {
	if l == nil {
		return fmt.Errorf("%w: %s", eventbus.ErrNilHandler, name)
	}
	return s.bus.Register(name, l.OnDemand)
}

// Start launches the demand delivery goroutine.
func (s *Sprinkler) Start(ctx context.Context) error {
	return s.bus.Start(ctx)
}

// Stop delivers queued demands, then stops. Stop the aggregator first so
// no reading arrives after the demand queue closes.
func (s *Sprinkler) Stop() {
	s.bus.Stop()
}

// Stats returns the demand bus counters.
func (s *Sprinkler) Stats() eventbus.Stats {
	return s.bus.Stats()
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
