package mockserver

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection represents a single client exchange.
type Connection struct {
	ID       string
	FolderID string
	Conn     *websocket.Conn
	mu       sync.Mutex
}

// WriteJSON writes v to the connection with proper locking.
func (c *Connection) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// WriteMessage writes a raw frame with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Hub tracks open connections.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// Folders maps folder_id to set of connection IDs
	folders map[string]map[string]bool

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		folders:     make(map[string]map[string]bool),
	}
}

// NewConnection wraps ws with a fresh connection ID.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn.ID] = conn
}

// BindFolder records which folder a connection is asking about.
func (h *Hub) BindFolder(conn *Connection, folderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.FolderID = folderID
	if h.folders[folderID] == nil {
		h.folders[folderID] = make(map[string]bool)
	}
	h.folders[folderID][conn.ID] = true
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, conn.ID)
	if conn.FolderID != "" && h.folders[conn.FolderID] != nil {
		delete(h.folders[conn.FolderID], conn.ID)
		if len(h.folders[conn.FolderID]) == 0 {
			delete(h.folders, conn.FolderID)
		}
	}
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// GetFolderCount returns the number of folders with an active exchange.
func (h *Hub) GetFolderCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.folders)
}
