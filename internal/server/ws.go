package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/cvjutsu/internal/seal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// stateMessage is the wire format for tracker snapshots.
type stateMessage struct {
	CurrentSeal       string      `json:"current_seal"`
	CurrentConfidence float64     `json:"current_confidence"`
	ConfirmedSequence []string    `json:"confirmed_sequence"`
	MatchedJutsu      *seal.Jutsu `json:"matched_jutsu,omitempty"`
	SealJustConfirmed bool        `json:"seal_just_confirmed"`
	JutsuJustMatched  bool        `json:"jutsu_just_matched"`
	Timestamp         int64       `json:"timestamp"`
}

// StateHandler broadcasts tracker state snapshots via WebSocket.
// The recognition pipeline publishes a snapshot per processed frame;
// every connected client receives it as a JSON message.
type StateHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewStateHandler creates a StateHandler with no connected clients.
func NewStateHandler() *StateHandler {
	return &StateHandler{
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish sends a tracker snapshot to all connected clients.
func (h *StateHandler) Publish(state seal.State) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg := stateMessage{
		CurrentSeal:       state.CurrentSeal,
		CurrentConfidence: state.CurrentConfidence,
		ConfirmedSequence: state.ConfirmedSequence,
		MatchedJutsu:      state.MatchedJutsu,
		SealJustConfirmed: state.SealJustConfirmed,
		JutsuJustMatched:  state.JutsuJustMatched,
		Timestamp:         time.Now().UnixMilli(),
	}

	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("websocket write error: %v", err)
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *StateHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
