package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/pkg/logger"
)

// Hub broadcasts pricing decisions to websocket subscribers. It
// implements contracts.DecisionSink; Publish never blocks the engine;
// a client that cannot keep up is dropped.
// ⭐ SSOT: 결정 스트림 브로드캐스트는 여기서만
type Hub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]chan []byte
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHub creates a new decision stream hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.WithField("module", "stream"),
	}
}

// Publish implements contracts.DecisionSink
func (h *Hub) Publish(decision *contracts.PricingDecision) {
	payload, err := json.Marshal(decision)
	if err != nil {
		h.logger.WithError(err).Error("Decision marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, send := range h.clients {
		select {
		case send <- payload:
		default:
			// slow consumer; the write loop will clean up after close
			h.logger.WithField("remote", conn.RemoteAddr().String()).
				Warn("Dropping slow decision stream client")
			conn.Close()
		}
	}
}

// ServeWS upgrades the connection and streams decisions until the
// client disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	send := make(chan []byte, 64)
	h.register(conn, send)
	h.logger.WithField("remote", conn.RemoteAddr().String()).Info("Decision stream client connected")

	go h.writeLoop(conn, send)
	h.readLoop(conn)
}

func (h *Hub) register(conn *websocket.Conn, send chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = send
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	conn.Close()
}

// writeLoop forwards queued decisions to one client
func (h *Hub) writeLoop(conn *websocket.Conn, send chan []byte) {
	for payload := range send {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unregister(conn)
			return
		}
	}
}

// readLoop exists only to detect disconnects; inbound messages are
// discarded
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
