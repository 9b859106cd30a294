package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xiaot623/pdfchat/internal/logging"
	"github.com/xiaot623/pdfchat/internal/protocol"
)

// State is the lifecycle state of a Session's transport.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// Notifier shows transient, non-blocking notifications to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// Guard decides whether an outgoing query may be sent.
type Guard interface {
	Check(ctx context.Context, query string) (decision, reason string, err error)
}

// Decision values returned by a Guard.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets where server-reported errors are surfaced.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithGuard installs an outgoing-query policy.
func WithGuard(g Guard) Option {
	return func(s *Session) { s.guard = g }
}

// exchange is one request/stream-response cycle.
type exchange struct {
	cancel context.CancelFunc
	conn   Conn
	done   chan struct{}
	err    error
}

// Session drives streaming exchanges for a single folder. Each SendMessage opens
// a new transport; starting a send while another exchange is in flight closes
// the previous transport first, and its remaining frames are discarded.
type Session struct {
	folderID string
	url      string
	dialer   Dialer
	observer Observer
	notifier Notifier
	guard    Guard

	mu    sync.Mutex
	state State
	cur   *exchange

	// deliverMu serializes observer and notifier callbacks.
	deliverMu sync.Mutex
}

// NewSession creates a session for folderID that dials url for every send.
func NewSession(folderID, url string, dialer Dialer, observer Observer, opts ...Option) *Session {
	s := &Session{
		folderID: folderID,
		url:      url,
		dialer:   dialer,
		observer: observer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(message string) {
			logging.Warnf("Server error: %s", message)
		})
	}
	return s
}

// FolderID returns the folder the session is bound to.
func (s *Session) FolderID() string {
	return s.folderID
}

// State returns the current transport state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConnectionActive reports whether a transport is open and streaming.
func (s *Session) ConnectionActive() bool {
	return s.State() == StateStreaming
}

// SendMessage appends the user message to the observer and starts a new
// exchange in the background. userMessageID must equal len(history) as a
// decimal string. Only precondition violations are returned; transport and
// protocol failures are handled inside the session.
func (s *Session) SendMessage(history []Message, query, userMessageID string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	replyID, err := protocol.ExpectedReplyID(userMessageID)
	if err != nil {
		return err
	}
	if s.guard != nil {
		decision, reason, err := s.guard.Check(context.Background(), query)
		if err != nil {
			return fmt.Errorf("failed to evaluate query policy: %w", err)
		}
		if decision != DecisionAllow {
			return &PolicyError{Decision: decision, Reason: reason}
		}
	}

	userMsg := Message{ID: userMessageID, Type: TypeUser, Content: query}
	env, err := protocol.NewQueryEnvelope(s.folderID, userMessageID, toHistory(history, userMsg))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ex := &exchange{cancel: cancel, done: make(chan struct{})}

	s.deliverMu.Lock()
	s.mu.Lock()
	if s.state != StateIdle {
		logging.Warnf("Superseding in-flight exchange for folder %s", s.folderID)
	}
	s.closeLocked()
	s.cur = ex
	s.state = StateConnecting
	s.mu.Unlock()
	s.observer.OnUserMessage(userMsg)
	s.deliverMu.Unlock()

	go s.run(ctx, ex, env, replyID)
	return nil
}

// CloseConnection closes the open transport, if any. It is safe to call repeatedly.
func (s *Session) CloseConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// Wait blocks until the most recent exchange ends or ctx is done. It returns the
// transport error that ended the exchange, or nil for a normal or forced close.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	ex := s.cur
	s.mu.Unlock()
	if ex == nil {
		return nil
	}
	select {
	case <-ex.done:
		return ex.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) closeLocked() {
	if s.cur != nil && s.state != StateIdle {
		s.cur.cancel()
		if s.cur.conn != nil {
			if err := s.cur.conn.Close(); err != nil {
				logging.Debugf("Closing transport: %v", err)
			}
		}
	}
	s.state = StateIdle
}

// current reports whether ex is the live exchange.
func (s *Session) current(ex *exchange) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur == ex && s.state != StateIdle
}

func (s *Session) opened(ex *exchange, conn Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != ex || s.state != StateConnecting {
		return false
	}
	ex.conn = conn
	s.state = StateStreaming
	return true
}

// finish moves a live exchange to idle and reports whether ex was still live.
func (s *Session) finish(ex *exchange) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != ex || s.state == StateIdle {
		return false
	}
	ex.cancel()
	s.state = StateIdle
	return true
}

func (s *Session) run(ctx context.Context, ex *exchange, env *protocol.QueryEnvelope, replyID string) {
	defer close(ex.done)

	conn, err := s.dialer.Dial(ctx, s.url)
	if err != nil {
		if s.finish(ex) {
			ex.err = err
			logging.Errorf("WebSocket error: folder=%s: %v", s.folderID, err)
		}
		return
	}
	if !s.opened(ex, conn) {
		conn.Close()
		return
	}
	logging.Debugf("WebSocket opened: folder=%s message_id=%s", s.folderID, env.MessageID)

	if err := conn.WriteJSON(env); err != nil {
		if s.finish(ex) {
			ex.err = fmt.Errorf("failed to send query: %w", err)
			logging.Errorf("WebSocket error: folder=%s: %v", s.folderID, ex.err)
		}
		conn.Close()
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.finish(ex) {
				if isNormalClose(err) {
					logging.Debugf("WebSocket connection closed: folder=%s", s.folderID)
				} else {
					ex.err = err
					logging.Errorf("WebSocket error: folder=%s: %v", s.folderID, err)
				}
			}
			conn.Close()
			return
		}
		s.handleFrame(ex, data, replyID)
	}
}

func (s *Session) handleFrame(ex *exchange, data []byte, replyID string) {
	evt, err := protocol.ParseEvent(data)
	if err != nil {
		logging.Warnf("Dropping frame: %v", err)
		return
	}

	switch evt.Type {
	case protocol.TypeError:
		s.deliver(ex, func() { s.notifier.Notify(evt.Data) })
	case protocol.TypeToken:
		if evt.MessageID != replyID {
			logging.Debugf("Ignoring token for message_id=%q (want %q)", evt.MessageID, replyID)
			return
		}
		s.deliver(ex, func() { s.observer.OnAssistantFragment(evt.MessageID, evt.Data) })
	default:
		logging.Debugf("Ignoring event type %q", evt.Type)
	}
}

// deliver runs fn only while ex is still the live exchange.
func (s *Session) deliver(ex *exchange, fn func()) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if !s.current(ex) {
		return
	}
	fn()
}
