package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"sikadvoltz/progression/internal/live"
	"sikadvoltz/progression/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// heartbeatInterval must stay well under the presence TTL so an
	// open connection keeps its presence record alive.
	heartbeatInterval = 20 * time.Second
	readDeadline      = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checking is the gateway's job; this service sits behind it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated clients onto the live channel and
// feeds the presence tracker.
type WSHandler struct {
	hub      *live.Hub
	presence presence.Tracker
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *live.Hub, tracker presence.Tracker) *WSHandler {
	return &WSHandler{hub: hub, presence: tracker}
}

// Connect handles GET /ws.
func (h *WSHandler) Connect(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Printf("WARN: websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	client := &live.Client{UserID: userID, Conn: conn}
	h.hub.Register(client)
	if err := h.presence.MarkOnline(c.Request.Context(), userID); err != nil {
		log.Printf("WARN: failed to mark user %s online: %v", userID, err)
	}

	go h.serve(client)
}

// serve keeps the connection's presence record fresh until the client
// goes away, then tears everything down.
func (h *WSHandler) serve(client *live.Client) {
	defer func() {
		h.hub.Unregister(client)
		if !h.hub.IsConnected(client.UserID) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.presence.MarkOffline(ctx, client.UserID); err != nil {
				log.Printf("WARN: failed to mark user %s offline: %v", client.UserID, err)
			}
		}
	}()

	client.Conn.SetReadDeadline(time.Now().Add(readDeadline))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			// Clients don't send application data; the read pump exists
			// to process control frames and detect disconnects.
			if _, _, err := client.Conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := h.presence.MarkOnline(ctx, client.UserID); err != nil {
				log.Printf("WARN: presence refresh failed for user %s: %v", client.UserID, err)
			}
			cancel()
		}
	}
}
