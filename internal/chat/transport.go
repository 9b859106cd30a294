package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is an open streaming transport.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Dialer opens a streaming transport.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebSocketDialer dials the streaming endpoint with gorilla/websocket.
type WebSocketDialer struct {
	dialer *websocket.Dialer
	token  string
}

// NewWebSocketDialer creates a dialer. A non-empty token is sent as a bearer
// Authorization header on the handshake.
func NewWebSocketDialer(handshakeTimeout time.Duration, token string) *WebSocketDialer {
	return &WebSocketDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		token: token,
	}
}

// Dial opens a WebSocket connection to url.
func (d *WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	header := http.Header{}
	if d.token != "" {
		header.Set("Authorization", "Bearer "+d.token)
	}

	conn, resp, err := d.dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}

// isNormalClose reports whether a read error means the peer ended the stream
// rather than the transport failing.
func isNormalClose(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
