package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/pdfchat/internal/protocol"
)

type frame struct {
	data []byte
	err  error
}

// fakeConn is an in-memory transport driven by the test acting as the server.
type fakeConn struct {
	frames    chan frame
	closed    chan struct{}
	closeOnce sync.Once
	sent      chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan frame, 32),
		closed: make(chan struct{}),
		sent:   make(chan []byte, 4),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case f, ok := <-c.frames:
		if !ok {
			return 0, nil, io.EOF
		}
		if f.err != nil {
			return 0, nil, f.err
		}
		return websocket.TextMessage, f.data, nil
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.sent <- data
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// push queues a server frame.
func (c *fakeConn) push(raw string) {
	c.frames <- frame{data: []byte(raw)}
}

// fail queues a transport error.
func (c *fakeConn) fail(err error) {
	c.frames <- frame{err: err}
}

// hangUp ends the stream normally once queued frames are read.
func (c *fakeConn) hangUp() {
	close(c.frames)
}

func (c *fakeConn) envelope(t *testing.T) protocol.QueryEnvelope {
	t.Helper()
	select {
	case data := <-c.sent:
		var env protocol.QueryEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("invalid envelope: %v", err)
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for envelope")
	}
	return protocol.QueryEnvelope{}
}

// fakeDialer hands out queued connections in order. When hold is set, Dial
// blocks until release is closed or the context ends.
type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	err     error
	hold    chan struct{}
	dialed  int
	lastURL string
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	d.dialed++
	d.lastURL = url
	hold := d.hold
	d.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if len(d.conns) == 0 {
		return nil, errors.New("no fake connection queued")
	}
	conn := d.conns[0]
	d.conns = d.conns[1:]
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialed
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}
