package drivers

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/clockz"
)

// Interval emits the tick time once per period, for pipelines that consume
// clock events as data.
type Interval struct {
	period time.Duration
	clock  clockz.Clock
}

// NewInterval creates the driver. A nil clock means the real clock.
func NewInterval(period time.Duration, clock clockz.Clock) (*Interval, error) {
	if period <= 0 {
		return nil, fmt.Errorf("interval driver: %w", ErrPeriodRequired)
	}
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Interval{period: period, clock: clock}, nil
}

// Run implements pulse.Driver[time.Time].
func (i *Interval) Run(ctx context.Context, emit func(time.Time) bool) error {
	ticker := i.clock.NewTicker(i.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C():
			if !emit(t) {
				return nil
			}
		}
	}
}
