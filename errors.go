package pulse

import (
	"errors"
	"sync"
)

// Sentinel errors for common failure cases.
var (
	ErrInvalidInterval = errors.New("flush interval must be positive")
	ErrEngineStopped   = errors.New("engine is stopped")
	ErrDriverExists    = errors.New("driver already registered")
)

// errorSink collects transform failures for a graph. Failures degrade to
// "drop this value"; they are reported to registered observers instead of
// aborting the emit call. A graph with no observers drops failures silently.
type errorSink struct {
	mu  sync.Mutex
	fns []func(error)
}

func (s *errorSink) observe(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

func (s *errorSink) report(err error) {
	s.mu.Lock()
	fns := s.fns
	s.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}
