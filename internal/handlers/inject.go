package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sossolinski/decisionary-app-sub000/internal/services"
	"github.com/sossolinski/decisionary-app-sub000/internal/ws"

	"github.com/gin-gonic/gin"
)

var errInjectOrID = errors.New("inject_id or inject payload required")

type InjectHandler struct {
	injectService   *services.InjectService
	orderingService *services.OrderingService
	scenarioService *services.ScenarioService
	hub             *ws.Hub
}

func NewInjectHandler(injectService *services.InjectService, orderingService *services.OrderingService, scenarioService *services.ScenarioService, hub *ws.Hub) *InjectHandler {
	return &InjectHandler{
		injectService:   injectService,
		orderingService: orderingService,
		scenarioService: scenarioService,
		hub:             hub,
	}
}

// ListInjects godoc
// @Summary      List the facilitator's inject library
// @Tags         injects
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} services.InjectInput
// @Router       /api/v1/injects [get]
func (h *InjectHandler) ListInjects(c *gin.Context) {
	userID := c.GetUint("user_id")

	injects, err := h.injectService.ListInjects(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, injects)
}

// CreateInject godoc
// @Summary      Create a standalone inject
// @Tags         injects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.InjectInput true "Inject data"
// @Success      201 {object} models.Inject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/injects [post]
func (h *InjectHandler) CreateInject(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req services.InjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	inject, err := h.injectService.CreateInject(userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, inject)
}

// UpdateInject godoc
// @Summary      Update an inject
// @Tags         injects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Inject ID"
// @Param        request body services.InjectInput true "Inject data"
// @Success      200 {object} models.Inject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/injects/{id} [put]
func (h *InjectHandler) UpdateInject(c *gin.Context) {
	userID := c.GetUint("user_id")
	injectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.InjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	inject, err := h.injectService.UpdateInject(injectID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, inject)
}

// DeleteInject godoc
// @Summary      Delete an inject outright
// @Description  Removes the inject everywhere, including other scenarios that attached it
// @Tags         injects
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Inject ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/injects/{id} [delete]
func (h *InjectHandler) DeleteInject(c *gin.Context) {
	userID := c.GetUint("user_id")
	injectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.injectService.DeleteInject(injectID, userID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "inject deleted"})
}

type AttachRequest struct {
	InjectID    uint       `json:"inject_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`

	// When InjectID is zero a new inject is created from these fields
	// and attached in one call.
	Inject *services.InjectInput `json:"inject"`
}

// AttachInject godoc
// @Summary      Attach an inject to a scenario
// @Description  Attach an existing inject, or create and attach a new one
// @Tags         injects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        request body AttachRequest true "Attachment data"
// @Success      201 {object} models.ScenarioInject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id}/injects [post]
func (h *InjectHandler) AttachInject(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.requireWrite(c, scenarioID, userID) {
		return
	}

	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var attachment interface{}
	var err error
	switch {
	case req.InjectID != 0:
		attachment, err = h.injectService.Attach(scenarioID, req.InjectID, req.ScheduledAt)
	case req.Inject != nil:
		attachment, err = h.injectService.CreateAndAttach(scenarioID, userID, *req.Inject, req.ScheduledAt)
	default:
		err = errInjectOrID
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.BroadcastToScenario(scenarioID, ws.WSMessage{Type: "order_changed", Data: gin.H{"scenario_id": scenarioID}})
	c.JSON(http.StatusCreated, attachment)
}

// DetachInject godoc
// @Summary      Detach an inject from a scenario
// @Description  Removes only the attachment; the inject itself survives
// @Tags         injects
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        attachment_id path int true "Attachment ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id}/injects/{attachment_id} [delete]
func (h *InjectHandler) DetachInject(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachment_id")
	if !ok {
		return
	}
	if !h.requireWrite(c, scenarioID, userID) {
		return
	}

	if err := h.injectService.Detach(scenarioID, attachmentID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.BroadcastToScenario(scenarioID, ws.WSMessage{Type: "order_changed", Data: gin.H{"scenario_id": scenarioID}})
	c.JSON(http.StatusOK, MessageResponse{Message: "inject detached"})
}

type RescheduleRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// RescheduleInject godoc
// @Summary      Set or clear an attachment's scheduled delivery time
// @Tags         injects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        attachment_id path int true "Attachment ID"
// @Param        request body RescheduleRequest true "Schedule data (null clears)"
// @Success      200 {object} models.ScenarioInject
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id}/injects/{attachment_id}/schedule [put]
func (h *InjectHandler) RescheduleInject(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachment_id")
	if !ok {
		return
	}
	if !h.requireWrite(c, scenarioID, userID) {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	attachment, err := h.injectService.Reschedule(scenarioID, attachmentID, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, attachment)
}

type MoveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// MoveInject godoc
// @Summary      Move an attachment up or down in the authored order
// @Description  If corrupt indices are found the list is renumbered instead and the move must be requested again
// @Tags         injects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        attachment_id path int true "Attachment ID"
// @Param        request body MoveRequest true "Direction: up or down"
// @Success      200 {object} services.MoveResult
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id}/injects/{attachment_id}/move [post]
func (h *InjectHandler) MoveInject(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachment_id")
	if !ok {
		return
	}
	if !h.requireWrite(c, scenarioID, userID) {
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.orderingService.MoveInject(scenarioID, attachmentID, req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.BroadcastToScenario(scenarioID, ws.WSMessage{Type: "order_changed", Data: result})
	c.JSON(http.StatusOK, result)
}

func (h *InjectHandler) requireWrite(c *gin.Context, scenarioID, userID uint) bool {
	if !h.scenarioService.CanEdit(scenarioID, userID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "no write access to scenario"})
		return false
	}
	return true
}
