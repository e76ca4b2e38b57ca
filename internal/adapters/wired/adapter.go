package wired

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/planteur/planteur-core/internal/adapters"
	"github.com/planteur/planteur-core/internal/monitoring"
)

const defaultPollInterval = 1200 * time.Millisecond

// Options configures an Adapter.
type Options struct {
	// PollInterval defaults to 1.2s.
	PollInterval time.Duration
	Logger       adapters.Logger

	// Now stamps readings. Defaults to time.Now.
	Now func() time.Time
}

// Stats counts polls.
type Stats struct {
	Polls  uint64
	Posted uint64
	Failed uint64
}

// Adapter polls one plant's sensor.
type Adapter struct {
	poster   adapters.Poster
	uid      string
	sensor   Sensor
	interval time.Duration
	logger   adapters.Logger
	now      func() time.Time

	polls  atomic.Uint64
	posted atomic.Uint64
	failed atomic.Uint64
}

var _ adapters.Adapter = (*Adapter)(nil)

// New creates an adapter posting readings for plant uid.
func New(poster adapters.Poster, uid string, sensor Sensor, opts Options) *Adapter {
	a := &Adapter{
		poster:   poster,
		uid:      uid,
		sensor:   sensor,
		interval: opts.PollInterval,
		logger:   adapters.LoggerOrNoop(opts.Logger),
		now:      opts.Now,
	}
	if a.interval <= 0 {
		a.interval = defaultPollInterval
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Name implements adapters.Adapter.
func (a *Adapter) Name() string { return "wired:" + a.uid }

// Stats returns a snapshot of the poll counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Polls:  a.polls.Load(),
		Posted: a.posted.Load(),
		Failed: a.failed.Load(),
	}
}

// Run polls immediately and then every interval until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	a.logger.Info("polling sensor", "adapter", a.Name(), "interval", a.interval)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.poll(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *Adapter) poll(ctx context.Context) {
	a.polls.Add(1)

	r, err := a.read(ctx)
	if err != nil {
		a.failed.Add(1)
		a.logger.Warn("sensor poll failed", "adapter", a.Name(), "error", err)
		return
	}

	a.logger.Debug("polled new value", "adapter", a.Name(), "reading", r.String())
	a.posted.Add(1)
	a.poster.Post(r)
}

func (a *Adapter) read(ctx context.Context) (monitoring.Reading, error) {
	s, err := a.sensor.Read(ctx)
	if err != nil {
		return monitoring.Reading{}, fmt.Errorf("reading sensor: %w", err)
	}

	var opts []monitoring.Option
	if s.Humidity != nil {
		opts = append(opts, monitoring.WithHumidity(*s.Humidity))
	}
	if s.Temperature != nil {
		opts = append(opts, monitoring.WithTemperature(*s.Temperature))
	}

	r := monitoring.NewReadingAt(a.now(), a.uid, opts...)
	if err := r.Validate(); err != nil {
		return monitoring.Reading{}, err
	}
	return r, nil
}
