package pulse

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// engineMetrics instruments the engine's bridge into the graph. Counters
// come from the configured MeterProvider; the default is a no-op.
type engineMetrics struct {
	deliveries     metric.Int64Counter
	rejected       metric.Int64Counter
	flushes        metric.Int64Counter
	driverFailures metric.Int64Counter
}

func newEngineMetrics(mp metric.MeterProvider) *engineMetrics {
	meter := mp.Meter("pulsegraph/pulse")

	deliveries, _ := meter.Int64Counter("pulse.engine.deliveries",
		metric.WithDescription("values delivered into the graph by drivers"))
	rejected, _ := meter.Int64Counter("pulse.engine.rejected_deliveries",
		metric.WithDescription("deliveries dropped because the engine was shutting down"))
	flushes, _ := meter.Int64Counter("pulse.engine.flushes",
		metric.WithDescription("timed buffer flush ticks delivered"))
	driverFailures, _ := meter.Int64Counter("pulse.engine.driver_failures",
		metric.WithDescription("drivers deregistered due to failure"))

	return &engineMetrics{
		deliveries:     deliveries,
		rejected:       rejected,
		flushes:        flushes,
		driverFailures: driverFailures,
	}
}

func (m *engineMetrics) addDelivery()      { m.deliveries.Add(context.Background(), 1) }
func (m *engineMetrics) addRejected()      { m.rejected.Add(context.Background(), 1) }
func (m *engineMetrics) addFlush()         { m.flushes.Add(context.Background(), 1) }
func (m *engineMetrics) addDriverFailure() { m.driverFailures.Add(context.Background(), 1) }
