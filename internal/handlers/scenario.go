package handlers

import (
	"net/http"
	"strconv"

	"github.com/sossolinski/decisionary-app-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type ScenarioHandler struct {
	scenarioService *services.ScenarioService
}

func NewScenarioHandler(scenarioService *services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{scenarioService: scenarioService}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// ListScenarios godoc
// @Summary      List scenarios
// @Description  Scenarios owned by or shared with the facilitator
// @Tags         scenarios
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} services.ScenarioInput
// @Router       /api/v1/scenarios [get]
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	userID := c.GetUint("user_id")

	scenarios, err := h.scenarioService.ListScenarios(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, scenarios)
}

// CreateScenario godoc
// @Summary      Create a scenario
// @Tags         scenarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.ScenarioInput true "Scenario data"
// @Success      201 {object} models.Scenario
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/scenarios [post]
func (h *ScenarioHandler) CreateScenario(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req services.ScenarioInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	scenario, err := h.scenarioService.CreateScenario(userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, scenario)
}

// GetScenario godoc
// @Summary      Get a scenario with its inject library and roles
// @Tags         scenarios
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Success      200 {object} models.Scenario
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id} [get]
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}

	scenario, err := h.scenarioService.GetScenario(scenarioID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, scenario)
}

// UpdateScenario godoc
// @Summary      Update a scenario
// @Tags         scenarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        request body services.ScenarioInput true "Scenario data"
// @Success      200 {object} models.Scenario
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id} [put]
func (h *ScenarioHandler) UpdateScenario(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ScenarioInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	scenario, err := h.scenarioService.UpdateScenario(scenarioID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, scenario)
}

// DeleteScenario godoc
// @Summary      Delete a scenario and everything attached to it
// @Tags         scenarios
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id} [delete]
func (h *ScenarioHandler) DeleteScenario(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.scenarioService.DeleteScenario(scenarioID, userID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "scenario deleted"})
}

type ShareRequest struct {
	Username string `json:"username" binding:"required"`
	Access   string `json:"access" binding:"required"`
}

// ShareScenario godoc
// @Summary      Share a scenario with a co-facilitator
// @Tags         scenarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        request body ShareRequest true "Share data"
// @Success      201 {object} models.ScenarioShare
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id}/shares [post]
func (h *ScenarioHandler) ShareScenario(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	share, err := h.scenarioService.ShareScenario(scenarioID, userID, req.Username, req.Access)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, share)
}

// RevokeShare godoc
// @Summary      Revoke a co-facilitator share
// @Tags         scenarios
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        share_id path int true "Share ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id}/shares/{share_id} [delete]
func (h *ScenarioHandler) RevokeShare(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}
	shareID, ok := pathID(c, "share_id")
	if !ok {
		return
	}

	if err := h.scenarioService.RevokeShare(scenarioID, userID, shareID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "share revoked"})
}

// ListRoles godoc
// @Summary      List a scenario's declared roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Success      200 {array} services.RoleInput
// @Router       /api/v1/scenarios/{id}/roles [get]
func (h *ScenarioHandler) ListRoles(c *gin.Context) {
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}

	roles, err := h.scenarioService.ListRoles(scenarioID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, roles)
}

// CreateRole godoc
// @Summary      Declare a role on a scenario
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Scenario ID"
// @Param        request body services.RoleInput true "Role data"
// @Success      201 {object} models.ScenarioRole
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/scenarios/{id}/roles [post]
func (h *ScenarioHandler) CreateRole(c *gin.Context) {
	userID := c.GetUint("user_id")
	scenarioID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RoleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	role, err := h.scenarioService.CreateRole(scenarioID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, role)
}

// UpdateRole godoc
// @Summary      Update a scenario role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Role ID"
// @Param        request body services.RoleInput true "Role data"
// @Success      200 {object} models.ScenarioRole
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/roles/{id} [put]
func (h *ScenarioHandler) UpdateRole(c *gin.Context) {
	userID := c.GetUint("user_id")
	roleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RoleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	role, err := h.scenarioService.UpdateRole(roleID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, role)
}

// DeleteRole godoc
// @Summary      Delete a scenario role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Role ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/roles/{id} [delete]
func (h *ScenarioHandler) DeleteRole(c *gin.Context) {
	userID := c.GetUint("user_id")
	roleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.scenarioService.DeleteRole(roleID, userID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role deleted"})
}
