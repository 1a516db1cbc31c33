package notification

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/signalmaster/signal-engine/internal/logger"
)

// Hub broadcasts emitted signals to all connected websocket clients.
// Clients are write-only from the server's perspective; inbound frames are
// read and discarded to service control messages.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[*websocket.Conn]bool

	log *logger.Logger
}

// NewHub creates a Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]bool),
		log:   log,
	}
}

// HandleWS upgrades the request and registers the connection until it
// closes.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))

		return
	}

	h.register(conn)

	go h.readLoop(conn)
}

// Broadcast marshals the payload and writes it to every connected client.
// Clients that fail the write are dropped.
func (h *Hub) Broadcast(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal broadcast payload", zap.Error(err))

		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warn("dropping websocket client", zap.Error(err))
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[conn] {
		conn.Close()
		delete(h.conns, conn)
	}
}

// readLoop drains inbound frames so ping/pong and close handshakes are
// processed, unregistering the client when the connection errors.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
