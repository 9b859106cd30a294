package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/pdfchat/internal/protocol"
)

// newStreamServer replies to the envelope with the given token fragments and
// then closes normally.
func newStreamServer(t *testing.T, fragments ...string) (*httptest.Server, chan http.Header) {
	t.Helper()
	headers := make(chan http.Header, 1)
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer ws.Close()

		var env protocol.QueryEnvelope
		if err := ws.ReadJSON(&env); err != nil {
			t.Errorf("read envelope: %v", err)
			return
		}
		replyID, err := protocol.ExpectedReplyID(env.MessageID)
		if err != nil {
			t.Errorf("bad message id: %v", err)
			return
		}
		for _, f := range fragments {
			ws.WriteJSON(protocol.Event{Type: protocol.TypeToken, Data: f, MessageID: replyID})
		}
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
		// Wait for the client to acknowledge the close.
		ws.ReadMessage()
	}))
	t.Cleanup(server.Close)
	return server, headers
}

func TestWebSocketDialerStreamsReply(t *testing.T) {
	server, headers := newStreamServer(t, "Hello", ", ", "world")
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	store := NewMemoryStore()
	s := NewSession("folder-1", url, NewWebSocketDialer(time.Second, "jwt-123"), store)
	t.Cleanup(s.CloseConnection)

	require.NoError(t, s.SendMessage(nil, "greet me", store.NextID()))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))

	assert.Equal(t, "Bearer jwt-123", (<-headers).Get("Authorization"))
	assert.Equal(t, []Message{
		{ID: "0", Type: TypeUser, Content: "greet me"},
		{ID: "1", Type: TypeAI, Content: "Hello, world"},
	}, store.Messages())
	assert.False(t, s.ConnectionActive())
}

func TestWebSocketDialerReportsHandshakeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	d := NewWebSocketDialer(time.Second, "")
	_, err := d.Dial(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
