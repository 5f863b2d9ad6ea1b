package handlers

import (
	"net/http"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"
	"github.com/sossolinski/decisionary-app-sub000/internal/services"
	"github.com/sossolinski/decisionary-app-sub000/internal/ws"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService  *services.SessionService
	deliveryService *services.DeliveryService
	roleService     *services.RoleService
	actionService   *services.ActionService
	hub             *ws.Hub
}

func NewSessionHandler(sessionService *services.SessionService, deliveryService *services.DeliveryService, roleService *services.RoleService, actionService *services.ActionService, hub *ws.Hub) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		deliveryService: deliveryService,
		roleService:     roleService,
		actionService:   actionService,
		hub:             hub,
	}
}

type CreateSessionRequest struct {
	ScenarioID uint   `json:"scenario_id" binding:"required" example:"1"`
	Title      string `json:"title" binding:"max=255"`
}

// CreateSession godoc
// @Summary      Create a session from a scenario
// @Description  Generates a join code and creates the session in draft status
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateSessionRequest true "Session data"
// @Success      201 {object} models.Session
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	session, err := h.sessionService.CreateSession(req.ScenarioID, userID, req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ListSessions godoc
// @Summary      List the facilitator's sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} services.SessionSummary
// @Router       /api/v1/sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID := c.GetUint("user_id")

	sessions, err := h.sessionService.ListSessions(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSession godoc
// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} models.Session
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// StartSession godoc
// @Summary      Set a session live
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} models.Session
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/start [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	h.setStatus(c, models.SessionStatusLive)
}

// EndSession godoc
// @Summary      End a session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} models.Session
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/end [post]
func (h *SessionHandler) EndSession(c *gin.Context) {
	h.setStatus(c, models.SessionStatusEnded)
}

func (h *SessionHandler) setStatus(c *gin.Context, status string) {
	userID := c.GetUint("user_id")
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.SetStatus(sessionID, userID, status)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "session_status", Data: session})
	c.JSON(http.StatusOK, session)
}

// RestartSession godoc
// @Summary      Restart a session
// @Description  Deletes all delivered injects, actions and the situation, then resets the session to draft. Irreversible.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} models.Session
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/restart [post]
func (h *SessionHandler) RestartSession(c *gin.Context) {
	userID := c.GetUint("user_id")
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.Restart(sessionID, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "session_status", Data: session})
	c.JSON(http.StatusOK, session)
}

// DeliverDue godoc
// @Summary      Deliver all due injects
// @Description  Delivers every scheduled inject whose time has passed and which has not yet been delivered
// @Tags         delivery
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/deliver-due [post]
func (h *SessionHandler) DeliverDue(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	count, err := h.deliveryService.DeliverDue(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if count > 0 {
		h.hub.Broadcast(sessionID, ws.WSMessage{Type: "inject_delivered", Data: gin.H{"count": count}})
	}
	c.JSON(http.StatusOK, gin.H{"delivered": count})
}

// DeliverNext godoc
// @Summary      Deliver the next pending inject by authored order
// @Tags         delivery
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} models.SessionInject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/deliver-next [post]
func (h *SessionHandler) DeliverNext(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	record, err := h.deliveryService.DeliverNext(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "inject_delivered", Data: record})
	c.JSON(http.StatusOK, record)
}

type DeliverInjectRequest struct {
	InjectID uint `json:"inject_id" binding:"required"`
}

// DeliverInject godoc
// @Summary      Deliver one specific inject now
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        request body DeliverInjectRequest true "Inject to deliver"
// @Success      200 {object} models.SessionInject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/deliver [post]
func (h *SessionHandler) DeliverInject(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req DeliverInjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	record, err := h.deliveryService.DeliverInject(sessionID, req.InjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "inject_delivered", Data: record})
	c.JSON(http.StatusOK, record)
}

// QuickMessage godoc
// @Summary      Send an ad-hoc message into the session
// @Description  Creates a new inject with no scenario backing and delivers it immediately
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        request body services.InjectInput true "Message content"
// @Success      201 {object} models.SessionInject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/quick-message [post]
func (h *SessionHandler) QuickMessage(c *gin.Context) {
	userID := c.GetUint("user_id")
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.InjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	record, err := h.deliveryService.DeliverAdHoc(sessionID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "inject_delivered", Data: record})
	c.JSON(http.StatusCreated, record)
}

// PendingInjects godoc
// @Summary      List the scenario injects not yet delivered into the session
// @Tags         delivery
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {array} models.ScenarioInject
// @Router       /api/v1/sessions/{id}/pending [get]
func (h *SessionHandler) PendingInjects(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pending, err := h.deliveryService.Pending(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, pending)
}

// GetRoster godoc
// @Summary      Get joined participants and role assignments
// @Description  Ensures one role slot per scenario role before reading
// @Tags         roster
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} services.Roster
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/roster [get]
func (h *SessionHandler) GetRoster(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	roster, err := h.roleService.GetRoster(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, roster)
}

type AssignRoleRequest struct {
	ScenarioRoleID uint  `json:"scenario_role_id" binding:"required"`
	ParticipantID  *uint `json:"participant_id"`
}

// AssignRole godoc
// @Summary      Assign or clear a participant on a role slot
// @Description  A null participant_id clears the slot
// @Tags         roster
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        request body AssignRoleRequest true "Assignment"
// @Success      200 {object} models.SessionRoleAssignment
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/roles/assign [post]
func (h *SessionHandler) AssignRole(c *gin.Context) {
	userID := c.GetUint("user_id")
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var slot interface{}
	var err error
	if req.ParticipantID != nil {
		slot, err = h.roleService.Assign(sessionID, req.ScenarioRoleID, *req.ParticipantID, userID)
	} else {
		slot, err = h.roleService.Clear(sessionID, req.ScenarioRoleID, userID)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "roles_changed", Data: slot})
	c.JSON(http.StatusOK, slot)
}

// ListActions godoc
// @Summary      List the session's action log
// @Tags         actions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {array} models.SessionAction
// @Router       /api/v1/sessions/{id}/actions [get]
func (h *SessionHandler) ListActions(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	actions, err := h.actionService.ListActions(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, actions)
}

// GetSituation godoc
// @Summary      Get the session's current operating picture
// @Tags         situation
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} models.SessionSituation
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/situation [get]
func (h *SessionHandler) GetSituation(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	situation, err := h.sessionService.GetSituation(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, situation)
}

// UpdateSituation godoc
// @Summary      Update the session's operating picture
// @Tags         situation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        request body services.SituationInput true "Situation data"
// @Success      200 {object} models.SessionSituation
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/situation [put]
func (h *SessionHandler) UpdateSituation(c *gin.Context) {
	userID := c.GetUint("user_id")
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.SituationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	situation, err := h.sessionService.UpdateSituation(sessionID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "situation_updated", Data: situation})
	c.JSON(http.StatusOK, situation)
}
