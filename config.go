package pulse

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// Option is a function that configures an Engine.
type Option func(*Engine)

// WithLog sets the logger for the engine.
var WithLog = func(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithClock sets the clock driving flusher tickers and anything else the
// engine schedules. Defaults to RealClock.
var WithClock = func(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithErrorHandler sets the observer for driver failures. The handler
// receives the failed driver's name and its terminal error; the driver is
// deregistered, other drivers continue unaffected.
var WithErrorHandler = func(handler func(driver string, err error)) Option {
	return func(e *Engine) {
		e.errorHandler = handler
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for engine
// counters. Defaults to a no-op provider.
var WithMeterProvider = func(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		e.meterProvider = mp
	}
}

// NullWriter is a writer that discards all data.
type NullWriter struct{}

func (NullWriter) Write([]byte) (int, error) { return 0, nil }

// NullLogger creates a logger that discards all output.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
