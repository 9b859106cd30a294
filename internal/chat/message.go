// Package chat implements the streaming chat session: one request/stream-response
// exchange per send, reconstructing the assistant reply from token events.
package chat

import (
	"github.com/xiaot623/pdfchat/internal/protocol"
)

// MessageType is the origin of a message.
type MessageType string

const (
	TypeUser MessageType = protocol.RoleUser
	TypeAI   MessageType = protocol.RoleAI
)

// Message is one entry of a conversation.
type Message struct {
	ID      string      `json:"id"`
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

func toHistory(history []Message, next Message) []protocol.HistoryMessage {
	out := make([]protocol.HistoryMessage, 0, len(history)+1)
	for _, m := range history {
		out = append(out, protocol.HistoryMessage{ID: m.ID, Type: string(m.Type), Content: m.Content})
	}
	return append(out, protocol.HistoryMessage{ID: next.ID, Type: string(next.Type), Content: next.Content})
}
