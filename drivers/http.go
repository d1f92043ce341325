package drivers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zoobzio/clockz"
)

// Sentinel errors for common failure cases.
var (
	ErrURLRequired     = errors.New("url is required")
	ErrPeriodRequired  = errors.New("poll period must be positive")
	ErrDecoderRequired = errors.New("decoder is required")
)

// errStopped signals that the engine rejected a delivery; the driver winds
// down without reporting a failure.
var errStopped = errors.New("delivery rejected")

// PollingConfig configures a PollingClient.
type PollingConfig struct {
	URL     string
	Period  time.Duration
	Headers http.Header
	Method  string // http.MethodGet (default) or http.MethodPost
	Body    string // optional request body, sent on every poll

	// Client defaults to a fresh http.Client; Clock defaults to the real
	// clock and exists so tests can drive polls deterministically.
	Client *http.Client
	Clock  clockz.Clock
}

func (c *PollingConfig) validate() error {
	if c.URL == "" {
		return ErrURLRequired
	}
	if c.Period <= 0 {
		return ErrPeriodRequired
	}
	return nil
}

func (c *PollingConfig) withDefaults() PollingConfig {
	out := *c
	if out.Method == "" {
		out.Method = http.MethodGet
	}
	if out.Client == nil {
		out.Client = &http.Client{}
	}
	if out.Clock == nil {
		out.Clock = clockz.RealClock
	}
	return out
}

// PollingClient polls an HTTP endpoint at a fixed period and emits each
// response body as a string. The first poll happens immediately; missed
// ticks are not compensated. Response bodies are emitted regardless of
// status code, matching a feed that encodes errors in its payload.
type PollingClient struct {
	cfg PollingConfig
}

// NewPollingClient validates the config and creates the driver.
func NewPollingClient(cfg PollingConfig) (*PollingClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("polling client: %w", err)
	}
	return &PollingClient{cfg: cfg.withDefaults()}, nil
}

// Run implements pulse.Driver[string].
func (c *PollingClient) Run(ctx context.Context, emit func(string) bool) error {
	return c.loop(ctx, func(body string) bool { return emit(body) })
}

func (c *PollingClient) loop(ctx context.Context, emit func(string) bool) error {
	step := func() error {
		body, err := c.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return errStopped
			}
			return err
		}
		if !emit(body) {
			return errStopped
		}
		return nil
	}

	// Immediate first poll before entering the interval loop.
	if err := step(); err != nil {
		if errors.Is(err, errStopped) {
			return nil
		}
		return err
	}

	ticker := c.cfg.Clock.NewTicker(c.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			if err := step(); err != nil {
				if errors.Is(err, errStopped) {
					return nil
				}
				return err
			}
		}
	}
}

func (c *PollingClient) poll(ctx context.Context) (string, error) {
	var body io.Reader
	if c.cfg.Body != "" {
		body = strings.NewReader(c.cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, c.cfg.Method, c.cfg.URL, body)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", c.cfg.URL, err)
	}
	for key, values := range c.cfg.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("poll %s: %w", c.cfg.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response from %s: %w", c.cfg.URL, err)
	}
	return string(data), nil
}

// JSONPollingClient is a PollingClient that decodes each response body into
// T before emitting. A body that fails to decode is a driver failure, not a
// skipped value: a feed speaking the wrong schema should surface loudly.
type JSONPollingClient[T any] struct {
	inner *PollingClient
}

// NewJSONPollingClient validates the config and creates the driver.
func NewJSONPollingClient[T any](cfg PollingConfig) (*JSONPollingClient[T], error) {
	inner, err := NewPollingClient(cfg)
	if err != nil {
		return nil, err
	}
	return &JSONPollingClient[T]{inner: inner}, nil
}

// Run implements pulse.Driver[T].
func (c *JSONPollingClient[T]) Run(ctx context.Context, emit func(T) bool) error {
	var decodeErr error
	err := c.inner.loop(ctx, func(body string) bool {
		var v T
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			decodeErr = fmt.Errorf("decode response from %s: %w", c.inner.cfg.URL, err)
			return false
		}
		return emit(v)
	})
	if decodeErr != nil {
		return decodeErr
	}
	return err
}
