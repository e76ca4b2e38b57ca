package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/planteur/planteur-core/internal/adapters"
)

// Name identifies the adapter in logs.
const Name = "network"

const (
	defaultHost       = "localhost"
	defaultBufferSize = 2048

	bindMaxRetries  = 5
	bindMaxInterval = 5 * time.Second
)

// ErrBind is returned when the listening socket cannot be opened.
var ErrBind = errors.New("network: bind failed")

// Options configures an Adapter.
type Options struct {
	Host       string
	Port       int
	BufferSize int
	Logger     adapters.Logger

	// Now stamps datagrams without a timestamp. Defaults to time.Now.
	Now func() time.Time

	// Backoff builds the bind retry policy. Defaults to exponential
	// backoff with 5 retries.
	Backoff func() backoff.BackOff
}

// Stats counts datagrams seen by the adapter.
type Stats struct {
	Received uint64
	Posted   uint64
	Dropped  uint64
}

// Adapter listens for UDP plant messages and posts them.
type Adapter struct {
	poster  adapters.Poster
	addr    string
	bufSize int
	logger  adapters.Logger
	now     func() time.Time
	backoff func() backoff.BackOff

	mu    sync.Mutex
	conn  net.PacketConn
	ready chan struct{}

	received atomic.Uint64
	posted   atomic.Uint64
	dropped  atomic.Uint64
}

var _ adapters.Adapter = (*Adapter)(nil)

// New creates an adapter posting to poster. Port 0 binds an ephemeral port.
func New(poster adapters.Poster, opts Options) *Adapter {
	host := opts.Host
	if host == "" {
		host = defaultHost
	}
	a := &Adapter{
		poster:  poster,
		addr:    net.JoinHostPort(host, strconv.Itoa(opts.Port)),
		bufSize: opts.BufferSize,
		logger:  adapters.LoggerOrNoop(opts.Logger),
		now:     opts.Now,
		backoff: opts.Backoff,
		ready:   make(chan struct{}),
	}
	if a.bufSize <= 0 {
		a.bufSize = defaultBufferSize
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.backoff == nil {
		a.backoff = defaultBackoff
	}
	return a
}

func defaultBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = bindMaxInterval
	return backoff.WithMaxRetries(bo, bindMaxRetries)
}

// Name implements adapters.Adapter.
func (a *Adapter) Name() string { return Name }

// Ready is closed once the socket is bound.
func (a *Adapter) Ready() <-chan struct{} { return a.ready }

// Addr returns the bound address, or nil before Ready.
func (a *Adapter) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return nil
	}
	return a.conn.LocalAddr()
}

// Stats returns a snapshot of the datagram counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Received: a.received.Load(),
		Posted:   a.posted.Load(),
		Dropped:  a.dropped.Load(),
	}
}

// Run binds the socket and receives datagrams until ctx is cancelled.
// It must be called once.
func (a *Adapter) Run(ctx context.Context) error {
	conn, err := a.listen(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()
	close(a.ready)

	a.logger.Info("waiting for datagrams", "adapter", Name, "addr", conn.LocalAddr().String())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close() //nolint:errcheck // unblocks ReadFrom
	}()

	buf := make([]byte, a.bufSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("network: reading datagram: %w", err)
		}
		a.handleDatagram(buf[:n], from)
	}
}

func (a *Adapter) listen(ctx context.Context) (net.PacketConn, error) {
	var lc net.ListenConfig
	var conn net.PacketConn

	op := func() error {
		c, err := lc.ListenPacket(ctx, "udp", a.addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, wait time.Duration) {
		a.logger.Warn("bind failed, retrying", "adapter", Name, "addr", a.addr, "error", err, "retry_in", wait)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(a.backoff(), ctx), notify); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBind, a.addr, err)
	}
	return conn, nil
}

func (a *Adapter) handleDatagram(data []byte, from net.Addr) {
	a.received.Add(1)

	r, err := adapters.DecodePlantMessage(data, a.now())
	if err != nil {
		a.dropped.Add(1)
		a.logger.Warn("datagram dropped", "adapter", Name, "from", addrString(from), "error", err)
		return
	}

	a.logger.Debug("datagram received", "adapter", Name, "from", addrString(from), "reading", r.String())
	a.posted.Add(1)
	a.poster.Post(r)
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
