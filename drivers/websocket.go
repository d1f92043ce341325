package drivers

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
)

// WSConfig configures a WSClient.
type WSConfig struct {
	URL string

	// InitMessages are sent as text frames right after the handshake,
	// typically subscription requests.
	InitMessages []string

	HandshakeTimeout time.Duration

	// Dialer defaults to a dialer with HandshakeTimeout applied.
	Dialer *websocket.Dialer
}

// WSClient connects to a websocket endpoint and emits every text frame (and
// every UTF-8 binary frame) as a string. A normal close from the server
// ends the stream; there is no reconnect.
type WSClient struct {
	cfg WSConfig
}

// NewWSClient validates the config and creates the driver.
func NewWSClient(cfg WSConfig) (*WSClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("websocket client: %w", ErrURLRequired)
	}
	return &WSClient{cfg: cfg}, nil
}

// Run implements pulse.Driver[string].
func (c *WSClient) Run(ctx context.Context, emit func(string) bool) error {
	dialer := c.cfg.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	defer conn.Close()

	// ReadMessage has no context; close the connection to unblock it when
	// the engine shuts down.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for _, m := range c.cfg.InitMessages {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
			return fmt.Errorf("send init message: %w", err)
		}
	}

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read %s: %w", c.cfg.URL, err)
		}

		switch kind {
		case websocket.TextMessage:
			if !emit(string(data)) {
				return nil
			}
		case websocket.BinaryMessage:
			if utf8.Valid(data) {
				if !emit(string(data)) {
					return nil
				}
			}
		}
	}
}
