package adapters

import (
	"context"

	"github.com/planteur/planteur-core/internal/monitoring"
)

// Poster accepts readings. *monitoring.Aggregator implements it.
type Poster interface {
	Post(r monitoring.Reading)
}

// Adapter is a long-running reading producer.
//
// Run blocks until ctx is cancelled or the transport fails for good. It
// returns nil on cancellation.
type Adapter interface {
	Name() string
	Run(ctx context.Context) error
}

// Logger is the logging interface used by adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...any) {}
func (NoopLogger) Info(string, ...any)  {}
func (NoopLogger) Warn(string, ...any)  {}
func (NoopLogger) Error(string, ...any) {}

// LoggerOrNoop returns l, or a NoopLogger when l is nil.
func LoggerOrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}
