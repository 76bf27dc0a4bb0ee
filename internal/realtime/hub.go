package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max total connections
	maxTotalConns = 10000
)

// Hub fans feed events out to connected websocket views. Every view must
// unregister when torn down so a discarded view stops receiving updates.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*Client]struct{}
	shutdown bool
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{conns: make(map[*Client]struct{})}
}

// Register adds a connection to the hub and returns its Client.
func (h *Hub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shutdown {
		return nil, errors.New("hub is shut down")
	}
	if len(h.conns) >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.conns[client] = struct{}{}
	return client, nil
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[client]; ok {
		delete(h.conns, client)
		close(client.Send)
	}
}

// BroadcastAll sends message to every connected client. Clients whose send
// buffer is full are skipped rather than blocking the broadcast.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.conns {
		select {
		case client.Send <- message:
		default:
		}
	}
}

// ConnCount returns the number of registered connections.
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Shutdown closes all client channels and rejects further registrations.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.shutdown = true
	for client := range h.conns {
		delete(h.conns, client)
		close(client.Send)
	}
	return nil
}
