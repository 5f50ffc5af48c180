// Package live is the in-band delivery channel: a hub of websocket
// connections keyed by user id, fed by the /ws endpoint.
package live

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned when the user has no open connection on
// this instance.
var ErrNotConnected = errors.New("user has no live connection")

// Client is one open websocket connection belonging to a user. A user
// may hold several (phone + head unit).
type Client struct {
	UserID string
	Conn   *websocket.Conn

	// writeMu serializes data writes: gorilla/websocket allows at most
	// one concurrent writer per connection. Control frames (ping) have
	// their own concurrency guarantee and bypass this lock.
	writeMu sync.Mutex
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Hub fans messages out to every open connection of a user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a connection and closes it.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// IsConnected reports whether the user has at least one open connection
// on this instance.
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Send writes the payload to every open connection of the user. Returns
// ErrNotConnected when there is none; an individual write failure does
// not fail the send as long as one connection accepted it.
func (h *Hub) Send(userID string, payload interface{}) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[userID]
	if len(set) == 0 {
		return ErrNotConnected
	}

	delivered := false
	for c := range set {
		if err := c.write(websocket.TextMessage, msg); err == nil {
			delivered = true
		}
	}
	if !delivered {
		return ErrNotConnected
	}
	return nil
}
