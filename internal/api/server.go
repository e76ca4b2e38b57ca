package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/planteur/planteur-core/internal/eventbus"
	"github.com/planteur/planteur-core/internal/infrastructure/config"
	"github.com/planteur/planteur-core/internal/infrastructure/logging"
	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/plant"
	"github.com/planteur/planteur-core/internal/watering"
)

const (
	// gracefulShutdownTimeout is the maximum time to wait for in-flight
	// requests to complete during shutdown.
	gracefulShutdownTimeout = 10 * time.Second

	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// History answers the per-plant history queries. *storage.Store satisfies it.
type History interface {
	RecentReadings(ctx context.Context, uid string, limit int) ([]monitoring.Reading, error)
	LatestReading(ctx context.Context, uid string) (monitoring.Reading, error)
	RecentDemands(ctx context.Context, uid string, limit int) ([]watering.Demand, error)
}

// HealthChecker is a component whose health the status endpoint reports.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f HealthCheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// BusStats reports a snapshot of event bus counters.
type BusStats interface {
	Stats() eventbus.Stats
}

// Deps holds the dependencies required by the status server.
type Deps struct {
	Config   config.HTTPConfig
	Logger   *logging.Logger
	Registry *plant.Registry

	// History backs the readings and demands endpoints. Optional.
	History History

	// Components are probed by /api/v1/health, keyed by name.
	Components map[string]HealthChecker

	// Buses are reported by /api/v1/status, keyed by name.
	Buses map[string]BusStats

	// Gatherer is exposed on /metrics. Optional.
	Gatherer prometheus.Gatherer

	Version string
}

// Server is the HTTP status server.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.HTTPConfig
	logger     *logging.Logger
	registry   *plant.Registry
	history    History
	components map[string]HealthChecker
	buses      map[string]BusStats
	gatherer   prometheus.Gatherer
	version    string
	startTime  time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a status server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("plant registry is required")
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		registry:   deps.Registry,
		history:    deps.History,
		components: deps.Components,
		buses:      deps.Buses,
		gatherer:   deps.Gatherer,
		version:    deps.Version,
		startTime:  time.Now(),
	}, nil
}

// Start binds the listener and serves in a background goroutine.
// Binding happens synchronously so a port already in use is reported here.
//
// Parameters:
//   - ctx: Context bounding the bind (not the listener lifetime)
//
// Returns:
//   - error: If the address cannot be bound or the server is already started
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	srv := s.server
	go func() {
		s.logger.Info("status server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close gracefully shuts down the server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("status server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down status server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
