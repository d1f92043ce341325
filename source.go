// Package pulse implements a synchronous, callback-driven dataflow graph.
//
// A Source is the root of a graph; values pushed into it via Emit travel
// depth-first through a chain of operator stages to terminal sinks before
// Emit returns. Asynchronous producers (timers, polling loops, socket
// readers) are bridged into the graph by an Engine, which owns their
// lifetimes and guarantees that nothing is delivered into a graph after
// shutdown has completed.
package pulse

// node is one stage of the propagation graph. Its edges are the fused
// transforms of the downstream stages, in subscription order.
//
// IMPORTANT: graph construction is NOT safe for concurrent use. Build the
// full pipeline from a single goroutine; the finished graph is immutable
// and safe for concurrent emission.
type node[T any] struct {
	subs []func(T)
}

// forward propagates v to every downstream edge, depth-first, in
// subscription order. It returns only after all reachable sinks have
// observed v.
func (n *node[T]) forward(v T) {
	for _, sub := range n.subs {
		sub(v)
	}
}

func (n *node[T]) attach(edge func(T)) {
	n.subs = append(n.subs, edge)
}

// Source is the root of a dataflow graph and the only synchronous external
// emission entry point.
type Source[T any] struct {
	root *node[T]
	errs *errorSink
}

// NewSource creates an empty graph root.
func NewSource[T any]() *Source[T] {
	return &Source[T]{
		root: &node[T]{},
		errs: &errorSink{},
	}
}

// Emit pushes v through the graph. It visits every reachable stage
// depth-first, left-to-right in subscription order, and returns only after
// all sinks have observed the value (or the value was filtered out).
// No scheduling happens inside this call; it is a plain call tree.
//
// Emit is safe to call from multiple goroutines: stateless stages hold no
// mutable state, and every stateful stage serializes its own entry.
func (s *Source[T]) Emit(v T) {
	s.root.forward(v)
}

// Stream returns an operator handle over the root, from which the pipeline
// is composed.
func (s *Source[T]) Stream() *Stream[T] {
	return &Stream[T]{n: s.root, errs: s.errs}
}

// OnError registers an observer for transform failures occurring anywhere
// downstream of this source. A failing transform drops the offending value
// and reports here; it never aborts the emit call.
func (s *Source[T]) OnError(fn func(error)) {
	s.errs.observe(fn)
}
