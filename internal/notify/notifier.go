package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/planteur/planteur-core/internal/watering"
)

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
	defaultTopic            = "planteur/watering"
)

// Publisher sends a payload to a topic. *mqtt.Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the logging interface used by the notifier.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Options configures a Notifier.
type Options struct {
	// Topic defaults to planteur/watering.
	Topic string
	QoS   byte

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker (default 5).
	FailureThreshold int

	// OpenTimeout is how long the breaker stays open before letting a
	// trial publish through (default 30s).
	OpenTimeout time.Duration

	Logger Logger
}

// Stats is a snapshot of notifier counters.
type Stats struct {
	Published uint64
	Failed    uint64
	Rejected  uint64
	State     string
}

// Notifier publishes demands through a circuit breaker.
type Notifier struct {
	pub    Publisher
	topic  string
	qos    byte
	cb     *gobreaker.CircuitBreaker
	logger Logger

	published atomic.Uint64
	failed    atomic.Uint64
	rejected  atomic.Uint64
}

var _ watering.DemandListener = (*Notifier)(nil)

// New creates a Notifier publishing through pub.
func New(pub Publisher, opts Options) *Notifier {
	n := &Notifier{
		pub:    pub,
		topic:  opts.Topic,
		qos:    opts.QoS,
		logger: opts.Logger,
	}
	if n.topic == "" {
		n.topic = defaultTopic
	}
	if n.logger == nil {
		n.logger = noopLogger{}
	}

	threshold := opts.FailureThreshold
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}

	n.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "watering-notify",
		Timeout: timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- positive, checked above
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			n.logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return n
}

// OnDemand publishes d. While the breaker is open the demand is rejected
// without touching the broker.
func (n *Notifier) OnDemand(d watering.Demand) error {
	payload, err := Encode(d)
	if err != nil {
		return err
	}

	_, err = n.cb.Execute(func() (interface{}, error) {
		return nil, n.pub.Publish(n.topic, payload, n.qos, false)
	})
	switch {
	case err == nil:
		n.published.Add(1)
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		n.rejected.Add(1)
		return fmt.Errorf("%w: demand %s for %s not sent", ErrBreakerOpen, d.ID, d.PlantUID)
	default:
		n.failed.Add(1)
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
}

// Stats returns a snapshot of the counters and breaker state.
func (n *Notifier) Stats() Stats {
	return Stats{
		Published: n.published.Load(),
		Failed:    n.failed.Load(),
		Rejected:  n.rejected.Load(),
		State:     n.cb.State().String(),
	}
}

type message struct {
	Watering watering.Demand `json:"watering"`
}

// Encode returns the wire form of d.
func Encode(d watering.Demand) ([]byte, error) {
	b, err := json.Marshal(message{Watering: d})
	if err != nil {
		return nil, fmt.Errorf("encoding demand %s: %w", d.ID, err)
	}
	return b, nil
}
