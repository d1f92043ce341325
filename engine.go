package pulse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// EngineState is the lifecycle state of an Engine.
type EngineState string

const (
	StateIdle         EngineState = "IDLE"
	StateRunning      EngineState = "RUNNING"
	StateShuttingDown EngineState = "SHUTTING_DOWN"
	StateStopped      EngineState = "STOPPED"
)

// Driver is an asynchronous producer bound to a Source via RegisterDriver.
// Run produces values by calling emit until the context is cancelled, the
// feed ends (return nil) or the feed fails (return a non-nil error). emit
// returns false once the engine rejects deliveries; the driver should stop
// producing when that happens.
type Driver[T any] interface {
	Run(ctx context.Context, emit func(T) bool) error
}

// DriverFunc adapts a plain function to the Driver interface.
type DriverFunc[T any] func(ctx context.Context, emit func(T) bool) error

func (f DriverFunc[T]) Run(ctx context.Context, emit func(T) bool) error {
	return f(ctx, emit)
}

type runner struct {
	name string
	run  func(ctx context.Context) error
}

// Engine supervises asynchronous producers and bridges them into the
// synchronous graph. It owns the clock tickers that flush TimedBuffers and
// the lifetime of every registered driver: once Shutdown returns, no
// delivery reaches the graph.
type Engine struct {
	log           *slog.Logger
	clock         Clock
	meterProvider metric.MeterProvider
	metrics       *engineMetrics
	errorHandler  func(driver string, err error)

	mu      sync.Mutex
	state   EngineState
	runners map[string]*runner
	cancel  context.CancelFunc
	ctx     context.Context
	eg      *errgroup.Group
	stopped chan struct{}

	// deliverMu is held shared for the duration of each delivery and
	// exclusively while Shutdown drains in-flight deliveries.
	deliverMu sync.RWMutex
	rejected  atomic.Int64

	termMu   sync.Mutex
	termErrs error
}

// NewEngine creates an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:           NullLogger(),
		clock:         RealClock,
		meterProvider: noop.NewMeterProvider(),
		state:         StateIdle,
		runners:       map[string]*runner{},
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.metrics = newEngineMetrics(e.meterProvider)
	return e
}

// RegisterDriver binds a driver to a target source. Every value the driver
// emits passes through the engine's delivery gate before reaching
// target.Emit; deliveries attempted during shutdown are dropped and
// counted. Valid while the engine is Idle or Running.
func RegisterDriver[T any](e *Engine, name string, d Driver[T], target *Source[T]) error {
	return e.addRunner(name, func(ctx context.Context) error {
		return d.Run(ctx, func(v T) bool {
			return deliver(e, target, v)
		})
	})
}

// RegisterFlusher binds a clock-driven stage (typically a TimedBuffer) to
// an engine-owned ticker. Each tick passes the delivery gate before
// invoking Flush, so a tick never lands in a graph that is shutting down.
func (e *Engine) RegisterFlusher(name string, f Flusher) error {
	if f.Interval() <= 0 {
		return fmt.Errorf("flusher %s: %w", name, ErrInvalidInterval)
	}
	return e.addRunner(name, func(ctx context.Context) error {
		return e.flushLoop(ctx, f)
	})
}

func (e *Engine) addRunner(name string, run func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateShuttingDown, StateStopped:
		return fmt.Errorf("register %s: %w", name, ErrEngineStopped)
	}
	if _, exists := e.runners[name]; exists {
		return fmt.Errorf("%w: %s", ErrDriverExists, name)
	}

	r := &runner{name: name, run: run}
	e.runners[name] = r
	if e.state == StateRunning {
		ctx := e.ctx
		e.eg.Go(func() error {
			return e.supervise(ctx, r)
		})
	}
	return nil
}

// Run starts all registered drivers and blocks until every driver has
// finished, either by running out of work, by failing, or by Shutdown.
// It returns the accumulated terminal driver failures, if any. Calling Run
// while already Running returns nil immediately.
func (e *Engine) Run() error {
	e.mu.Lock()
	switch e.state {
	case StateRunning:
		e.mu.Unlock()
		return nil
	case StateShuttingDown, StateStopped:
		e.mu.Unlock()
		return ErrEngineStopped
	}
	e.changeState(StateRunning)
	ctx, cancel := context.WithCancel(context.Background())
	e.ctx = ctx
	e.cancel = cancel
	eg := &errgroup.Group{}
	e.eg = eg
	runners := make([]*runner, 0, len(e.runners))
	for _, r := range e.runners {
		runners = append(runners, r)
	}
	e.mu.Unlock()

	for _, r := range runners {
		r := r
		eg.Go(func() error {
			return e.supervise(ctx, r)
		})
	}

	_ = eg.Wait()

	e.termMu.Lock()
	defer e.termMu.Unlock()
	return e.termErrs
}

// supervise runs a single driver to completion. A failure deregisters the
// driver and is surfaced to the error handler; it never stops the engine
// or the other drivers.
func (e *Engine) supervise(ctx context.Context, r *runner) error {
	err := r.run(ctx)

	e.mu.Lock()
	delete(e.runners, r.name)
	e.mu.Unlock()

	if err == nil || errors.Is(err, context.Canceled) {
		e.log.Info("driver finished", "driver", r.name)
		return nil
	}

	e.log.Error("driver failed", "driver", r.name, "error", err)
	e.metrics.addDriverFailure()
	if e.errorHandler != nil {
		e.errorHandler(r.name, err)
	}

	e.termMu.Lock()
	e.termErrs = multierr.Append(e.termErrs, fmt.Errorf("driver %s: %w", r.name, err))
	e.termMu.Unlock()
	return nil
}

func (e *Engine) flushLoop(ctx context.Context, f Flusher) error {
	ticker := e.clock.NewTicker(f.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			e.tick(f)
		}
	}
}

func (e *Engine) tick(f Flusher) {
	e.deliverMu.RLock()
	defer e.deliverMu.RUnlock()
	if e.State() != StateRunning {
		e.rejected.Add(1)
		e.metrics.addRejected()
		return
	}
	f.Flush()
	e.metrics.addFlush()
}

// deliver is the gate every driver emission passes through. It holds the
// delivery lock shared for the duration of the emit, so Shutdown can drain
// in-flight deliveries before tearing down.
func deliver[T any](e *Engine, target *Source[T], v T) bool {
	e.deliverMu.RLock()
	defer e.deliverMu.RUnlock()
	if e.State() != StateRunning {
		e.rejected.Add(1)
		e.metrics.addRejected()
		return false
	}
	target.Emit(v)
	e.metrics.addDelivery()
	return true
}

// Shutdown stops all drivers and blocks until in-flight deliveries have
// completed. After it returns, no driver delivers into the graph; late
// delivery attempts are dropped and counted, never queued. Calling
// Shutdown on an idle engine transitions it directly to Stopped.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	switch e.state {
	case StateStopped:
		e.mu.Unlock()
		return nil
	case StateShuttingDown:
		e.mu.Unlock()
		<-e.stopped
		return nil
	case StateIdle:
		e.changeState(StateStopped)
		close(e.stopped)
		e.mu.Unlock()
		return nil
	}
	e.changeState(StateShuttingDown)
	cancel := e.cancel
	eg := e.eg
	e.mu.Unlock()

	cancel()

	// Drain in-flight deliveries; new attempts are rejected by the state
	// check inside the gate.
	e.deliverMu.Lock()
	e.deliverMu.Unlock() //nolint:staticcheck // empty critical section is the drain

	_ = eg.Wait()

	e.mu.Lock()
	e.changeState(StateStopped)
	close(e.stopped)
	e.mu.Unlock()
	return nil
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Rejected reports how many deliveries were dropped because they arrived
// after shutdown had begun.
func (e *Engine) Rejected() int64 {
	return e.rejected.Load()
}

// State transitions may only be done while holding e.mu.
func (e *Engine) changeState(newState EngineState) {
	e.log.Info("change state", "from", e.state, "to", newState)
	e.state = newState
}
