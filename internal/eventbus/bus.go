package eventbus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is used when Options.QueueSize is not positive.
const DefaultQueueSize = 256

// Handler consumes one event. Handlers run on the bus goroutine and must
// return quickly.
type Handler[T any] func(T) error

// Filter decides whether an event is delivered. A non-nil error drops the
// event; the error is logged at error level.
type Filter[T any] func(T) error

// Logger defines the logging interface used by the bus.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Bus. The zero value is usable.
type Options[T any] struct {
	// QueueSize bounds the number of queued events (default 256).
	QueueSize int

	// Filter, if set, runs on the consumer goroutine before delivery.
	Filter Filter[T]

	Logger  Logger
	Metrics *Metrics
}

// Stats is a snapshot of bus counters.
type Stats struct {
	Posted          uint64 `json:"posted"`
	Delivered       uint64 `json:"delivered"`
	Filtered        uint64 `json:"filtered"`
	DroppedStopped  uint64 `json:"dropped_stopped"`
	HandlerFailures uint64 `json:"handler_failures"`
	QueueDepth      int    `json:"queue_depth"`
	QueueCapacity   int    `json:"queue_capacity"`
	Handlers        int    `json:"handlers"`
}

type namedHandler[T any] struct {
	name string
	fn   Handler[T]
}

// closeOnce wraps a channel with sync.Once to prevent double-close panics.
type closeOnce struct {
	ch   chan struct{}
	once sync.Once
}

func newCloseOnce() *closeOnce {
	return &closeOnce{ch: make(chan struct{})}
}

func (c *closeOnce) Close() {
	c.once.Do(func() { close(c.ch) })
}

func (c *closeOnce) Done() <-chan struct{} {
	return c.ch
}

// Bus is a bounded FIFO queue with one consumer goroutine fanning events
// out to a static list of handlers.
//
// Thread Safety:
//   - Post is safe for concurrent use from any number of goroutines.
//   - Register, Start and Stop are safe to call concurrently with each other.
type Bus[T any] struct {
	name   string
	queue  chan T
	filter Filter[T]
	logger Logger

	metrics *Metrics

	mu       sync.Mutex
	handlers []namedHandler[T]
	started  bool

	// gate is held for reading by every Post while it may send on queue.
	// Stop takes it for writing to make sure no send is in flight before
	// the consumer drains.
	gate   sync.RWMutex
	sealed bool

	// closing unblocks Posts waiting on a full queue.
	closing *closeOnce
	// quit tells the consumer to drain and exit; closed after the gate is sealed.
	quit     *closeOnce
	stopOnce sync.Once
	wg       sync.WaitGroup

	posted         atomic.Uint64
	delivered      atomic.Uint64
	filtered       atomic.Uint64
	droppedStopped atomic.Uint64
	failures       atomic.Uint64
}

// New creates a stopped Bus. name labels logs and metrics.
func New[T any](name string, opts Options[T]) *Bus[T] {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	var logger Logger = noopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}

	return &Bus[T]{
		name:    name,
		queue:   make(chan T, size),
		filter:  opts.Filter,
		logger:  logger,
		metrics: opts.Metrics,
		closing: newCloseOnce(),
		quit:    newCloseOnce(),
	}
}

// Name returns the bus name.
func (b *Bus[T]) Name() string {
	return b.name
}

// Register appends a handler. Handlers are called in registration order.
//
// Returns:
//   - error: ErrAlreadyStarted once Start has been called, ErrNilHandler for nil fn
func (b *Bus[T]) Register(name string, fn Handler[T]) error {
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("%w: cannot register %s on %s", ErrAlreadyStarted, name, b.name)
	}
	b.handlers = append(b.handlers, namedHandler[T]{name: name, fn: fn})
	return nil
}

// Start launches the consumer goroutine. Cancelling ctx has the same effect
// as Stop, except that it does not wait for the drain to finish.
func (b *Bus[T]) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isStopping() {
		return ErrStopped
	}
	if b.started {
		return ErrAlreadyStarted
	}
	b.started = true

	// Handlers are fixed from here on.
	handlers := make([]namedHandler[T], len(b.handlers))
	copy(handlers, b.handlers)

	b.wg.Add(1)
	go b.run(ctx, handlers)

	b.logger.Info("event bus started", "bus", b.name, "handlers", len(handlers), "queue_size", cap(b.queue))
	return nil
}

// Post enqueues ev, blocking while the queue is full. After Stop the event
// is dropped and logged.
func (b *Bus[T]) Post(ev T) {
	b.gate.RLock()
	defer b.gate.RUnlock()

	if b.sealed {
		b.dropStopped()
		return
	}

	select {
	case b.queue <- ev:
		b.posted.Add(1)
		b.metrics.posted(b.name)
	case <-b.closing.Done():
		b.dropStopped()
	}
}

// Stop stops accepting events, delivers everything already queued and waits
// for the consumer goroutine to exit. Safe to call multiple times and on a
// bus that was never started.
func (b *Bus[T]) Stop() {
	b.shutdown()
	b.wg.Wait()
}

func (b *Bus[T]) shutdown() {
	b.stopOnce.Do(func() {
		b.closing.Close()

		b.gate.Lock()
		b.sealed = true
		b.gate.Unlock()

		b.quit.Close()
	})
}

func (b *Bus[T]) isStopping() bool {
	select {
	case <-b.closing.Done():
		return true
	default:
		return false
	}
}

// Stats returns a snapshot of the bus counters.
func (b *Bus[T]) Stats() Stats {
	b.mu.Lock()
	n := len(b.handlers)
	b.mu.Unlock()

	return Stats{
		Posted:          b.posted.Load(),
		Delivered:       b.delivered.Load(),
		Filtered:        b.filtered.Load(),
		DroppedStopped:  b.droppedStopped.Load(),
		HandlerFailures: b.failures.Load(),
		QueueDepth:      len(b.queue),
		QueueCapacity:   cap(b.queue),
		Handlers:        n,
	}
}

func (b *Bus[T]) run(ctx context.Context, handlers []namedHandler[T]) {
	defer b.wg.Done()

	for {
		select {
		case ev := <-b.queue:
			b.dispatch(ev, handlers)
		case <-ctx.Done():
			b.shutdown()
			b.drain(handlers)
			return
		case <-b.quit.Done():
			b.drain(handlers)
			return
		}
	}
}

// drain delivers whatever is left in the queue. No Post can send once the
// gate is sealed, so the queue only shrinks here.
func (b *Bus[T]) drain(handlers []namedHandler[T]) {
	n := 0
	for {
		select {
		case ev := <-b.queue:
			b.dispatch(ev, handlers)
			n++
		default:
			b.logger.Info("event bus stopped", "bus", b.name, "drained", n)
			return
		}
	}
}

func (b *Bus[T]) dispatch(ev T, handlers []namedHandler[T]) {
	b.metrics.setDepth(b.name, len(b.queue))

	if b.filter != nil {
		if err := b.filter(ev); err != nil {
			b.filtered.Add(1)
			b.metrics.dropped(b.name, dropReasonFiltered)
			b.logger.Error("event dropped", "bus", b.name, "error", err)
			return
		}
	}

	for _, h := range handlers {
		if err := b.call(h, ev); err != nil {
			b.failures.Add(1)
			b.metrics.handlerFailed(b.name, h.name)
			b.logger.Error("event handler failed", "bus", b.name, "handler", h.name, "error", err)
		}
	}

	b.delivered.Add(1)
	b.metrics.delivered(b.name)
}

// call runs one handler, converting a panic into an error.
func (b *Bus[T]) call(h namedHandler[T], ev T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h.fn(ev)
}

func (b *Bus[T]) dropStopped() {
	b.droppedStopped.Add(1)
	b.metrics.dropped(b.name, dropReasonStopped)
	b.logger.Warn("event posted after stop, dropped", "bus", b.name)
}
