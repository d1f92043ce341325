// Package drivers provides ready-made asynchronous producers for the pulse
// engine: an HTTP polling loop, a websocket read loop, a Kafka consumer and
// a plain interval timer. Every driver implements
//
//	Run(ctx context.Context, emit func(T) bool) error
//
// and is registered with pulse.RegisterDriver, which supplies the emit gate.
// Drivers stop promptly on context cancellation, return nil at end of
// stream and a non-nil error on failure. None of them retries; retry and
// backoff policy belongs to the caller.
package drivers
