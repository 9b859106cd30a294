// Package protocol defines the WebSocket message protocol between the chat client
// and the streaming assistant backend.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Event types from server to client
const (
	TypeToken = "token"
	TypeError = "error"
)

// Message origins inside the serialized conversation history.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// HistoryMessage is one entry of the history serialized into QueryEnvelope.Query.
type HistoryMessage struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// QueryEnvelope is sent by the client exactly once per exchange, right after the
// connection opens.
type QueryEnvelope struct {
	Query     string `json:"query"` // JSON-encoded []HistoryMessage
	FolderID  string `json:"folderId"`
	MessageID string `json:"message_id"`
}

// Event is a frame sent by the server.
type Event struct {
	Type      string `json:"type"`
	Data      string `json:"data"`
	MessageID string `json:"message_id"`
}

// ErrInvalidMessageID is returned when a message id is not a non-negative decimal integer.
var ErrInvalidMessageID = errors.New("message id must be a non-negative decimal integer")

// NewQueryEnvelope serializes history into an envelope for the given folder.
// history must already include the new user message.
func NewQueryEnvelope(folderID, messageID string, history []HistoryMessage) (*QueryEnvelope, error) {
	if history == nil {
		history = []HistoryMessage{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return &QueryEnvelope{
		Query:     string(data),
		FolderID:  folderID,
		MessageID: messageID,
	}, nil
}

// DecodeHistory parses the Query field back into history entries.
func (e *QueryEnvelope) DecodeHistory() ([]HistoryMessage, error) {
	var history []HistoryMessage
	if err := json.Unmarshal([]byte(e.Query), &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return history, nil
}

// ParseEvent decodes a server frame.
func ParseEvent(data []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("invalid event frame: %w", err)
	}
	return &evt, nil
}

// ParseMessageID validates a decimal message id and returns its value.
func ParseMessageID(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMessageID, id)
	}
	return n, nil
}

// ExpectedReplyID derives the id the server uses for the assistant reply to the
// user message userMessageID: the next integer, as a decimal string.
func ExpectedReplyID(userMessageID string) (string, error) {
	n, err := ParseMessageID(userMessageID)
	if err != nil {
		return "", err
	}
	if n == math.MaxUint64 {
		return "", fmt.Errorf("%w: %q has no successor", ErrInvalidMessageID, userMessageID)
	}
	return strconv.FormatUint(n+1, 10), nil
}
