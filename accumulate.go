package pulse

import (
	"fmt"
	"sync"
)

// accumulator folds incoming values against carried state. Concurrent
// callers are serialized on mu; downstream propagation happens under the
// lock, so sinks observe states in commit order.
type accumulator[T, S any] struct {
	mu      sync.Mutex
	state   S
	combine func(S, T) (S, error)
	out     *node[S]
	errs    *errorSink
}

func (a *accumulator[T, S]) accept(v T) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := a.combine(a.state, v)
	if err != nil {
		// Drop the value, retain the previous state.
		a.errs.report(fmt.Errorf("accumulate: %w", err))
		return
	}
	a.state = next
	a.out.forward(next)
}

// Accumulate appends a stateful stage that replaces its carried state with
// combine(state, input) on each input and forwards the new state. combine
// must be total; use TryAccumulate if it can fail.
func Accumulate[T, S any](s *Stream[T], initial S, combine func(S, T) S) *Stream[S] {
	return TryAccumulate(s, initial, func(state S, v T) (S, error) {
		return combine(state, v), nil
	})
}

// TryAccumulate is Accumulate for combine functions that can fail. A
// failing input is dropped, the previous state is retained and the error is
// reported to the graph's error sink.
func TryAccumulate[T, S any](s *Stream[T], initial S, combine func(S, T) (S, error)) *Stream[S] {
	a := &accumulator[T, S]{
		state:   initial,
		combine: combine,
		out:     &node[S]{},
		errs:    s.errs,
	}
	s.n.attach(a.accept)
	return &Stream[S]{n: a.out, errs: s.errs}
}
