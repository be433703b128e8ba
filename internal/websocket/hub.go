package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/entities"
)

// SnapshotSink receives world snapshots reported by viewers
type SnapshotSink interface {
	Install(snapshot entities.WorldSnapshot)
}

// Hub maintains the set of active viewer connections and fans messages out to
// them. A viewer carries no identity beyond its connection; the id assigned
// on accept exists only for registry bookkeeping and log correlation.
type Hub struct {
	// Registered viewers.
	clients map[string]*Client

	// Register requests from new connections.
	register chan *Client

	// Unregister requests from closing or failed connections.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	world SnapshotSink

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(world SnapshotSink, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		world:      world,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.viewerID] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Viewer connected",
				zap.String("viewerID", client.viewerID),
				zap.Int("totalConnections", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.viewerID]; ok {
				delete(h.clients, client.viewerID)
				client.markClosed()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Viewer disconnected",
				zap.String("viewerID", client.viewerID),
				zap.Int("totalConnections", total))
		}
	}
}

// Broadcast serializes the message once and attempts delivery to every
// registered viewer. Delivery is best effort: a viewer that has failed or
// fallen behind is pruned and the remaining viewers still receive the
// message. Nothing is queued or retried.
func (h *Hub) Broadcast(message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast message: %w", err)
	}

	for _, client := range h.list() {
		if !client.enqueue(payload) {
			h.logger.Warn("Dropping unreachable viewer",
				zap.String("viewerID", client.viewerID))
			h.unregister <- client
		}
	}
	return nil
}

// list returns a defensive copy of the connection set so iteration tolerates
// concurrent registration changes.
func (h *Hub) list() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// ClientCount reports the number of live viewer connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
