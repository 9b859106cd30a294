package chat

import (
	"strconv"
	"sync"
)

// Observer receives the message-store mutations produced by a Session.
// Callbacks are serialized by the session and must not call back into it.
type Observer interface {
	// OnUserMessage is called synchronously from SendMessage.
	OnUserMessage(msg Message)
	// OnAssistantFragment appends fragment to the assistant message id,
	// creating it on first use.
	OnAssistantFragment(id, fragment string)
}

// MultiObserver fans every callback out to each observer in order.
func MultiObserver(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) OnUserMessage(msg Message) {
	for _, o := range m {
		o.OnUserMessage(msg)
	}
}

func (m multiObserver) OnAssistantFragment(id, fragment string) {
	for _, o := range m {
		o.OnAssistantFragment(id, fragment)
	}
}

// MemoryStore is an ordered id -> message mapping. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Message
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Message)}
}

// OnUserMessage appends msg, or overwrites the message already stored under its id.
func (s *MemoryStore) OnUserMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(msg)
}

// OnAssistantFragment creates the ai message id with content fragment, or appends
// fragment to its current content.
func (s *MemoryStore) OnAssistantFragment(id, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byID[id]; ok {
		existing.Content += fragment
		return
	}
	s.put(Message{ID: id, Type: TypeAI, Content: fragment})
}

func (s *MemoryStore) put(msg Message) {
	if existing, ok := s.byID[msg.ID]; ok {
		*existing = msg
		return
	}
	m := msg
	s.byID[msg.ID] = &m
	s.order = append(s.order, msg.ID)
}

// Messages returns a snapshot of the conversation in insertion order.
func (s *MemoryStore) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// Get returns the message stored under id.
func (s *MemoryStore) Get(id string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// Len returns the number of stored messages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// NextID returns the id for the next user message: the current length.
func (s *MemoryStore) NextID() string {
	return strconv.Itoa(s.Len())
}
