package handlers

import (
	"errors"
	"net/http"

	"github.com/sossolinski/decisionary-app-sub000/internal/services"
	"github.com/sossolinski/decisionary-app-sub000/internal/ws"

	"github.com/gin-gonic/gin"
)

// PlayHandler is the participant-facing surface: join by code, read
// the inbox/pulse feeds and the situation, and record decisions.
// Participants authenticate with the token issued at join, not a JWT.
type PlayHandler struct {
	sessionService  *services.SessionService
	deliveryService *services.DeliveryService
	actionService   *services.ActionService
	hub             *ws.Hub
}

func NewPlayHandler(sessionService *services.SessionService, deliveryService *services.DeliveryService, actionService *services.ActionService, hub *ws.Hub) *PlayHandler {
	return &PlayHandler{
		sessionService:  sessionService,
		deliveryService: deliveryService,
		actionService:   actionService,
		hub:             hub,
	}
}

type PlayJoinRequest struct {
	Code     string `json:"code" binding:"required"`
	Nickname string `json:"nickname" binding:"required,min=1,max=100"`
	Token    string `json:"token"`
}

// Join godoc
// @Summary      Join a session by code
// @Description  Validates the join code and creates an anonymous participant identity; rejoin with the issued token is idempotent
// @Tags         play
// @Accept       json
// @Produce      json
// @Param        request body PlayJoinRequest true "Join data"
// @Success      200 {object} services.JoinResult
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/play/join [post]
func (h *PlayHandler) Join(c *gin.Context) {
	var req PlayJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.sessionService.JoinSession(req.Code, req.Nickname, req.Token)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrInvalidJoinCode) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	if !result.IsRejoin {
		h.hub.Broadcast(result.Session.ID, ws.WSMessage{
			Type: "participant_joined",
			Data: result.Participant,
		})
	}

	c.JSON(http.StatusOK, result)
}

// participant resolves the requesting participant from the session id
// path param and the token query param.
func (h *PlayHandler) participant(c *gin.Context) (uint, uint, bool) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return 0, 0, false
	}
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "participant token required"})
		return 0, 0, false
	}
	p, err := h.sessionService.GetParticipantByToken(sessionID, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return 0, 0, false
	}
	return sessionID, p.ID, true
}

// GetFeed godoc
// @Summary      Read the inbox or pulse feed
// @Tags         play
// @Produce      json
// @Param        id path int true "Session ID"
// @Param        feed query string true "inbox or pulse"
// @Param        token query string true "Participant token"
// @Success      200 {array} models.SessionInject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/play/sessions/{id}/feed [get]
func (h *PlayHandler) GetFeed(c *gin.Context) {
	sessionID, _, ok := h.participant(c)
	if !ok {
		return
	}

	records, err := h.deliveryService.Feed(sessionID, c.Query("feed"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// RecordAction godoc
// @Summary      Record a decision on a delivered inject
// @Description  Inbox items take ignore/escalate/act; pulse items take confirm/deny
// @Tags         play
// @Accept       json
// @Produce      json
// @Param        id path int true "Session ID"
// @Param        token query string true "Participant token"
// @Param        request body services.ActionInput true "Decision"
// @Success      201 {object} models.SessionAction
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/play/sessions/{id}/actions [post]
func (h *PlayHandler) RecordAction(c *gin.Context) {
	sessionID, participantID, ok := h.participant(c)
	if !ok {
		return
	}

	var req services.ActionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	action, err := h.actionService.RecordAction(sessionID, participantID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "action_recorded", Data: action})
	c.JSON(http.StatusCreated, action)
}

// GetSituation godoc
// @Summary      Read the session's current operating picture
// @Tags         play
// @Produce      json
// @Param        id path int true "Session ID"
// @Param        token query string true "Participant token"
// @Success      200 {object} models.SessionSituation
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/play/sessions/{id}/situation [get]
func (h *PlayHandler) GetSituation(c *gin.Context) {
	sessionID, _, ok := h.participant(c)
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
// @Summary      Update casualty counts from the field
// @Tags         play
// @Accept       json
// @Produce      json
// @Param        id path int true "Session ID"
// @Param        token query string true "Participant token"
// @Param        request body services.SituationInput true "Situation data"
// @Success      200 {object} models.SessionSituation
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/play/sessions/{id}/situation [put]
func (h *PlayHandler) UpdateSituation(c *gin.Context) {
	sessionID, participantID, ok := h.participant(c)
	if !ok {
		return
	}

	var req services.SituationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	situation, err := h.sessionService.UpdateSituation(sessionID, participantID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{Type: "situation_updated", Data: situation})
	c.JSON(http.StatusOK, situation)
}
