package pulse

import "fmt"

// Stream is a lightweight, composable handle over one stage of the graph.
// Operator calls append a new stage and return a handle over it; the
// original handle stays valid, so a single stage can fan out to several
// downstream chains.
type Stream[T any] struct {
	n    *node[T]
	errs *errorSink
}

// Map appends a stage that applies f to every value, emitting exactly one
// output per input. Cross-type operators are package functions because Go
// methods cannot introduce type parameters.
func Map[T, U any](s *Stream[T], f func(T) U) *Stream[U] {
	child := &node[U]{}
	s.n.attach(func(v T) {
		child.forward(f(v))
	})
	return &Stream[U]{n: child, errs: s.errs}
}

// TryMap is Map for transforms that can fail. A failing input is dropped
// at this stage and the error is reported to the graph's error sink;
// propagation of that value stops here, other branches are unaffected.
func TryMap[T, U any](s *Stream[T], f func(T) (U, error)) *Stream[U] {
	child := &node[U]{}
	errs := s.errs
	s.n.attach(func(v T) {
		out, err := f(v)
		if err != nil {
			errs.report(fmt.Errorf("map: %w", err))
			return
		}
		child.forward(out)
	})
	return &Stream[U]{n: child, errs: errs}
}

// FilterMap appends a stage that emits f's output iff its second return
// value is true.
func FilterMap[T, U any](s *Stream[T], f func(T) (U, bool)) *Stream[U] {
	child := &node[U]{}
	s.n.attach(func(v T) {
		if out, ok := f(v); ok {
			child.forward(out)
		}
	})
	return &Stream[U]{n: child, errs: s.errs}
}

// Filter appends a stage that forwards a value unchanged iff pred holds;
// otherwise propagation stops at this stage for that value.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	child := &node[T]{}
	s.n.attach(func(v T) {
		if pred(v) {
			child.forward(v)
		}
	})
	return &Stream[T]{n: child, errs: s.errs}
}

// Tap appends a stage that invokes fn for its side effect and forwards the
// value unchanged. fn cannot alter propagation.
func (s *Stream[T]) Tap(fn func(T)) *Stream[T] {
	child := &node[T]{}
	s.n.attach(func(v T) {
		fn(v)
		child.forward(v)
	})
	return &Stream[T]{n: child, errs: s.errs}
}

// Sink registers a terminal observer. A subscriber added after values have
// been emitted does not receive past values.
func (s *Stream[T]) Sink(fn func(T)) {
	s.n.attach(fn)
}
