package pulse

import (
	"fmt"
	"sync"
	"time"
)

// Flusher is a clock-driven stage. The Engine owns the ticker that calls
// Flush once per elapsed interval; a TimedBuffer never schedules itself.
type Flusher interface {
	Interval() time.Duration
	Flush()
}

// TimedBuffer accumulates values between ticks and forwards them downstream
// as a single ordered batch when flushed. Ticks are serialized with respect
// to appends: a flush never observes a half-appended batch.
//
// Policy: an empty batch is skipped at tick time; no downstream emission
// happens for an interval that saw no values.
type TimedBuffer[T any] struct {
	mu       sync.Mutex
	batch    []T
	interval time.Duration
	out      *node[[]T]
	errs     *errorSink
}

// BufferTimed appends a timed batching stage to s. Tick delivery is
// best-effort periodic: if the driving clock is delayed, the flush is
// delayed too; no catch-up flushes are performed.
func BufferTimed[T any](s *Stream[T], interval time.Duration) (*TimedBuffer[T], error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	b := &TimedBuffer[T]{
		interval: interval,
		out:      &node[[]T]{},
		errs:     s.errs,
	}
	s.n.attach(b.accept)
	return b, nil
}

func (b *TimedBuffer[T]) accept(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batch = append(b.batch, v)
}

// Stream returns the downstream handle carrying flushed batches.
func (b *TimedBuffer[T]) Stream() *Stream[[]T] {
	return &Stream[[]T]{n: b.out, errs: b.errs}
}

// Interval returns the configured flush interval.
func (b *TimedBuffer[T]) Interval() time.Duration {
	return b.interval
}

// Flush forwards the current batch downstream and clears it. Appends
// arriving while the batch propagates wait for the flush to complete.
func (b *TimedBuffer[T]) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.batch) == 0 {
		return
	}
	batch := b.batch
	b.batch = nil
	b.out.forward(batch)
}

// Len reports the number of values pending in the current batch.
func (b *TimedBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batch)
}
