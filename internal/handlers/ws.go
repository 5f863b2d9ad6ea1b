package handlers

import (
	"log"
	"net/http"

	"github.com/sossolinski/decisionary-app-sub000/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleSessionWebSocket godoc
// @Summary      WebSocket for session change notifications
// @Description  Receives inject deliveries, action log appends, situation and roster changes for one session
// @Tags         websocket
// @Param        id path int true "Session ID"
// @Router       /ws/session/{id} [get]
func (h *WSHandler) HandleSessionWebSocket(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.hub.AddConnection(sessionID, conn)
	defer h.hub.RemoveConnection(sessionID, conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// HandleScenarioWebSocket godoc
// @Summary      WebSocket for scenario change notifications
// @Description  Receives inject order changes for co-facilitators editing the same scenario
// @Tags         websocket
// @Param        id path int true "Scenario ID"
// @Router       /ws/scenario/{id} [get]
func (h *WSHandler) HandleScenarioWebSocket(c *gin.Context) {
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.hub.AddScenarioConnection(scenarioID, conn)
	defer h.hub.RemoveScenarioConnection(scenarioID, conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
