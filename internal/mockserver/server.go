// Package mockserver provides a scripted streaming backend that speaks the chat
// WebSocket protocol, for local development and end-to-end tests.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/xiaot623/pdfchat/internal/logging"
	"github.com/xiaot623/pdfchat/internal/protocol"
)

// Options configures a Server.
type Options struct {
	Script      *Script
	TokenRate   int // tokens per second; <= 0 disables pacing
	ReadTimeout time.Duration
	MaxMessage  int64
}

// Server answers one query envelope per WebSocket connection.
type Server struct {
	opts     Options
	echo     *echo.Echo
	hub      *Hub
	metrics  *Metrics
	upgrader websocket.Upgrader
}

// NewServer creates a mock backend. The socket is served on both / and /ws.
func NewServer(opts Options) *Server {
	if opts.Script == nil {
		opts.Script = DefaultScript()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.MaxMessage <= 0 {
		opts.MaxMessage = 1 << 20
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		opts:    opts,
		echo:    e,
		hub:     NewHub(),
		metrics: NewMetrics(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	e.GET("/", s.HandleWebSocket)
	e.GET("/ws", s.HandleWebSocket)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Hub returns the connection hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Metrics returns the server counters.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"connections": s.hub.GetConnectionCount(),
		"folders":     s.hub.GetFolderCount(),
	})
}

// HandleWebSocket upgrades the request and serves a single exchange.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logging.Warnf("Failed to upgrade WebSocket: %v", err)
		return nil
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)
	defer func() {
		s.hub.Unregister(conn)
		ws.Close()
	}()

	ws.SetReadLimit(s.opts.MaxMessage)
	ws.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))

	_, data, err := ws.ReadMessage()
	if err != nil {
		logging.Debugf("Connection %s closed before sending a query: %v", conn.ID, err)
		return nil
	}

	env, query, err := parseEnvelope(data)
	if err != nil {
		s.metrics.BadEnvelopes.Inc()
		logging.Warnf("Connection %s sent an invalid envelope: %v", conn.ID, err)
		s.sendError(conn, "", err.Error())
		s.closeNormal(conn)
		return nil
	}

	s.hub.BindFolder(conn, env.FolderID)
	s.metrics.Exchanges.Inc()
	logging.Infof("Exchange %s: folder=%s message_id=%s", conn.ID, env.FolderID, env.MessageID)

	replyID, _ := protocol.ExpectedReplyID(env.MessageID)
	s.stream(c.Request().Context(), conn, replyID, query)
	s.closeNormal(conn)
	return nil
}

func (s *Server) stream(ctx context.Context, conn *Connection, replyID, query string) {
	fragments, errMsg := s.opts.Script.Respond(query)
	if errMsg != "" {
		s.sendError(conn, replyID, errMsg)
		return
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.opts.TokenRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.TokenRate), 1)
	}

	for _, fragment := range fragments {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		evt := protocol.Event{Type: protocol.TypeToken, Data: fragment, MessageID: replyID}
		if err := conn.WriteJSON(evt); err != nil {
			logging.Debugf("Connection %s went away mid-reply: %v", conn.ID, err)
			return
		}
		s.metrics.TokensStreamed.Inc()
	}
}

func (s *Server) sendError(conn *Connection, messageID, message string) {
	evt := protocol.Event{Type: protocol.TypeError, Data: message, MessageID: messageID}
	if err := conn.WriteJSON(evt); err != nil {
		logging.Debugf("Failed to send error to %s: %v", conn.ID, err)
		return
	}
	s.metrics.ErrorEvents.Inc()
}

func (s *Server) closeNormal(conn *Connection) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		return
	}
	// Wait for the client to acknowledge the close.
	conn.Conn.SetReadDeadline(time.Now().Add(time.Second))
	conn.Conn.ReadMessage()
}

// parseEnvelope validates the first frame and returns the latest user query.
func parseEnvelope(data []byte) (*protocol.QueryEnvelope, string, error) {
	var env protocol.QueryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", errors.New("invalid query envelope")
	}
	if _, err := protocol.ParseMessageID(env.MessageID); err != nil {
		return nil, "", err
	}
	history, err := env.DecodeHistory()
	if err != nil {
		return nil, "", errors.New("invalid query history")
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Type == protocol.RoleUser {
			return &env, history[i].Content, nil
		}
	}
	return nil, "", errors.New("query history has no user message")
}
