package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	goserial "go.bug.st/serial"

	"github.com/planteur/planteur-core/internal/adapters"
)

// Name identifies the adapter in logs.
const Name = "serial"

const (
	defaultBaudRate = 9600

	openMaxInterval = 30 * time.Second
)

// OpenFunc opens a byte stream for the named port.
type OpenFunc func(port string, baudRate int) (io.ReadCloser, error)

// OpenPort opens a serial port in 8N1 mode.
func OpenPort(port string, baudRate int) (io.ReadCloser, error) {
	p, err := goserial.Open(port, &goserial.Mode{
		BaudRate: baudRate,
		DataBits: 8, //nolint:mnd // 8N1
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Options configures an Adapter.
type Options struct {
	Port     string
	BaudRate int
	Logger   adapters.Logger

	// Open defaults to OpenPort.
	Open OpenFunc

	// Now stamps readings. Defaults to time.Now.
	Now func() time.Time

	// Backoff builds the retry policy for failed opens and for reopens
	// after a read error. Defaults to exponential backoff capped at 30s
	// that retries until ctx is cancelled.
	Backoff func() backoff.BackOff
}

// Stats counts frames seen by the adapter.
type Stats struct {
	Frames   uint64
	Posted   uint64
	Rejected uint64
	Reopens  uint64
}

// Adapter reads frames from a serial port and posts plant readings.
type Adapter struct {
	poster   adapters.Poster
	resolver Resolver
	port     string
	baudRate int
	open     OpenFunc
	now      func() time.Time
	backoff  func() backoff.BackOff
	logger   adapters.Logger

	frames   atomic.Uint64
	posted   atomic.Uint64
	rejected atomic.Uint64
	reopens  atomic.Uint64
}

var _ adapters.Adapter = (*Adapter)(nil)

// New creates an adapter resolving frame sources through res.
func New(poster adapters.Poster, res Resolver, opts Options) *Adapter {
	a := &Adapter{
		poster:   poster,
		resolver: res,
		port:     opts.Port,
		baudRate: opts.BaudRate,
		open:     opts.Open,
		now:      opts.Now,
		backoff:  opts.Backoff,
		logger:   adapters.LoggerOrNoop(opts.Logger),
	}
	if a.baudRate <= 0 {
		a.baudRate = defaultBaudRate
	}
	if a.open == nil {
		a.open = OpenPort
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.backoff == nil {
		a.backoff = func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxInterval = openMaxInterval
			bo.MaxElapsedTime = 0
			return bo
		}
	}
	return a
}

// Name implements adapters.Adapter.
func (a *Adapter) Name() string { return Name }

// Stats returns a snapshot of the frame counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Frames:   a.frames.Load(),
		Posted:   a.posted.Load(),
		Rejected: a.rejected.Load(),
		Reopens:  a.reopens.Load(),
	}
}

// Run reads frames until ctx is cancelled, reopening the port after read
// errors. Reopens wait on the backoff policy, which is reset by every frame
// read in full. It returns an error only when the policy gives up.
func (a *Adapter) Run(ctx context.Context) error {
	reopen := backoff.WithContext(a.backoff(), ctx)

	for {
		port, err := a.openWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		a.logger.Info("waiting for frames", "adapter", Name, "port", a.port, "baud_rate", a.baudRate)
		err = a.readLoop(ctx, port, reopen)
		port.Close() //nolint:errcheck // already failed or shutting down

		if ctx.Err() != nil {
			return nil
		}

		wait := reopen.NextBackOff()
		if wait == backoff.Stop {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %s: reads keep failing: %w", ErrOpen, a.port, err)
		}
		a.logger.Warn("serial read failed, reopening",
			"adapter", Name, "port", a.port, "error", err, "retry_in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		a.reopens.Add(1)
	}
}

func (a *Adapter) openWithRetry(ctx context.Context) (io.ReadCloser, error) {
	var port io.ReadCloser
	op := func() error {
		p, err := a.open(a.port, a.baudRate)
		if err != nil {
			return err
		}
		port = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		a.logger.Warn("opening serial port failed, retrying",
			"adapter", Name, "port", a.port, "error", err, "retry_in", wait)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(a.backoff(), ctx), notify); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, a.port, err)
	}
	return port, nil
}

// readLoop returns the first read error. Closing the port on cancellation
// unblocks the pending read.
func (a *Adapter) readLoop(ctx context.Context, port io.ReadCloser, reopen backoff.BackOff) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			port.Close() //nolint:errcheck // unblocks Read
		case <-done:
		}
	}()

	for {
		f, err := ReadFrame(port)
		if err != nil {
			if errors.Is(err, ErrTruncated) {
				a.rejected.Add(1)
			}
			return err
		}
		reopen.Reset()
		a.handleFrame(f)
	}
}

func (a *Adapter) handleFrame(f Frame) {
	a.frames.Add(1)

	r, err := Decode(f, a.resolver, a.now())
	if err != nil {
		a.rejected.Add(1)
		a.logger.Warn("frame ignored", "adapter", Name, "frame", f.String(), "error", err)
		return
	}

	a.logger.Debug("frame received", "adapter", Name, "frame", f.String())
	a.posted.Add(1)
	a.poster.Post(r)
}
