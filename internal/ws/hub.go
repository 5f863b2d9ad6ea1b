package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans realtime change notifications out to open views. Sessions
// carry inbox/pulse/roster updates to participants; scenarios carry
// reorder updates to co-facilitators editing the same inject list.
// Receivers re-run their read query on notification rather than
// applying the payload incrementally.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[uint]map[*websocket.Conn]bool
	scenarios map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		sessions:  make(map[uint]map[*websocket.Conn]bool),
		scenarios: make(map[uint]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(sessionID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.sessions[sessionID][conn] = true
	log.Printf("ws: client connected to session %d (total: %d)", sessionID, len(h.sessions[sessionID]))
}

func (h *Hub) RemoveConnection(sessionID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.sessions[sessionID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.sessions, sessionID)
		}
		log.Printf("ws: client disconnected from session %d", sessionID)
	}
}

func (h *Hub) AddScenarioConnection(scenarioID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.scenarios[scenarioID] == nil {
		h.scenarios[scenarioID] = make(map[*websocket.Conn]bool)
	}
	h.scenarios[scenarioID][conn] = true
}

func (h *Hub) RemoveScenarioConnection(scenarioID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.scenarios[scenarioID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.scenarios, scenarioID)
		}
	}
}

// Broadcast holds the write lock: send prunes dead connections from
// the shared map, so concurrent broadcasts may not run under RLock.
func (h *Hub) Broadcast(sessionID uint, message WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.send(h.sessions[sessionID], message)
}

func (h *Hub) BroadcastToScenario(scenarioID uint, message WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.send(h.scenarios[scenarioID], message)
}

// send expects the caller to hold the write lock.
func (h *Hub) send(conns map[*websocket.Conn]bool, message WSMessage) {
	if len(conns) == 0 {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}
