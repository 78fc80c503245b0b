// -----------------------------------------------------------------------
// Publisher bridge - websocket pub/sub for delta frames
//
// Frame layout per message: [1-byte topic length][topic][payload],
// payload being the wire-format delta for that topic. New subscribers
// receive the entire-workflow snapshot first.
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/cursus/internal/schemas"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// SnapshotSource supplies the entire-workflow frame set for new
// subscribers.
type SnapshotSource interface {
	EntireSnapshot() *schemas.AllDeltas
}

// WebSocketHandler fans published delta frames out to subscribers. It
// is the scheduler's Publisher bridge.
type WebSocketHandler struct {
	logger      arbor.ILogger
	snapshot    SnapshotSource
	clients     map[*websocket.Conn]bool
	clientMutex map[*websocket.Conn]*sync.Mutex
	mu          sync.RWMutex
	limiter     *rate.Limiter
}

// NewWebSocketHandler creates the subscriber hub. pushRate caps frames
// per second across the hub; zero disables the cap.
func NewWebSocketHandler(snapshot SnapshotSource, pushRate float64, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:      logger,
		snapshot:    snapshot,
		clients:     make(map[*websocket.Conn]bool),
		clientMutex: make(map[*websocket.Conn]*sync.Mutex),
	}
	if pushRate > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(pushRate), int(pushRate)+1)
	}
	return h
}

// HandleWebSocket handles WebSocket subscriber connections.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Msgf("Subscriber connected (total: %d)", clientCount)

	// Entire workflow first so the replica starts consistent.
	if h.snapshot != nil {
		if batch := h.snapshot.EntireSnapshot(); batch != nil {
			h.sendFrame(conn, []byte(schemas.AllType), batch.Marshal())
		}
	}

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()
		conn.Close()
		h.logger.Info().Msgf("Subscriber disconnected (remaining: %d)", remaining)
	}()

	// Subscribers are write-only; drain reads until close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// PublishFrames sends one batch of (topic, payload) pairs to every
// subscriber.
func (h *WebSocketHandler) PublishFrames(frames [][2][]byte) error {
	for _, frame := range frames {
		if h.limiter != nil {
			_ = h.limiter.Wait(context.Background())
		}
		h.broadcast(frame[0], frame[1])
	}
	return nil
}

// PublishShutdown sends the one-shot shutdown sentinel.
func (h *WebSocketHandler) PublishShutdown() error {
	h.broadcast([]byte(schemas.ShutdownTopic), nil)
	return nil
}

func (h *WebSocketHandler) broadcast(topic, payload []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()
	for _, conn := range conns {
		h.sendFrame(conn, topic, payload)
	}
}

func (h *WebSocketHandler) sendFrame(conn *websocket.Conn, topic, payload []byte) {
	h.mu.RLock()
	mutex, ok := h.clientMutex[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	message := make([]byte, 0, 1+len(topic)+len(payload))
	message = append(message, byte(len(topic)))
	message = append(message, topic...)
	message = append(message, payload...)

	mutex.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, message)
	mutex.Unlock()
	if err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write frame to subscriber")
	}
}
