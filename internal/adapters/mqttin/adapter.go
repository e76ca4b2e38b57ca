package mqttin

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/planteur/planteur-core/internal/adapters"
	"github.com/planteur/planteur-core/internal/infrastructure/mqtt"
)

// Name identifies the adapter in logs.
const Name = "mqtt"

// Subscriber is the part of *mqtt.Client the adapter needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Options configures an Adapter.
type Options struct {
	// Topic defaults to planteur/plant.
	Topic  string
	QoS    byte
	Logger adapters.Logger

	// Now stamps messages without a timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Stats counts messages seen by the adapter.
type Stats struct {
	Received uint64
	Posted   uint64
	Dropped  uint64
}

// Adapter subscribes to plant messages and posts them.
type Adapter struct {
	sub    Subscriber
	poster adapters.Poster
	topic  string
	qos    byte
	logger adapters.Logger
	now    func() time.Time

	received atomic.Uint64
	posted   atomic.Uint64
	dropped  atomic.Uint64
}

var _ adapters.Adapter = (*Adapter)(nil)

// New creates an adapter reading from sub.
func New(sub Subscriber, poster adapters.Poster, opts Options) *Adapter {
	a := &Adapter{
		sub:    sub,
		poster: poster,
		topic:  opts.Topic,
		qos:    opts.QoS,
		logger: adapters.LoggerOrNoop(opts.Logger),
		now:    opts.Now,
	}
	if a.topic == "" {
		a.topic = mqtt.Topics{}.PlantReadings()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Name implements adapters.Adapter.
func (a *Adapter) Name() string { return Name }

// Stats returns a snapshot of the message counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Received: a.received.Load(),
		Posted:   a.posted.Load(),
		Dropped:  a.dropped.Load(),
	}
}

// Run subscribes and blocks until ctx is cancelled, then unsubscribes.
func (a *Adapter) Run(ctx context.Context) error {
	if err := a.sub.Subscribe(a.topic, a.qos, a.HandleMessage); err != nil {
		return fmt.Errorf("mqttin: subscribing to %s: %w", a.topic, err)
	}
	a.logger.Info("waiting for plant messages", "adapter", Name, "topic", a.topic)

	<-ctx.Done()

	if err := a.sub.Unsubscribe(a.topic); err != nil {
		a.logger.Debug("unsubscribe failed", "adapter", Name, "topic", a.topic, "error", err)
	}
	return nil
}

// HandleMessage decodes one plant message and posts it. Malformed messages
// are counted and returned as errors, which the MQTT client logs.
func (a *Adapter) HandleMessage(topic string, payload []byte) error {
	a.received.Add(1)

	r, err := adapters.DecodePlantMessage(payload, a.now())
	if err != nil {
		a.dropped.Add(1)
		return fmt.Errorf("mqttin: %s: %w", topic, err)
	}

	a.posted.Add(1)
	a.poster.Post(r)
	return nil
}
