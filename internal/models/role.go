package models

import "time"

// ScenarioRole is a named role slot declared on a scenario.
type ScenarioRole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ScenarioID  uint      `gorm:"not null;index" json:"scenario_id"`
	Key         string    `gorm:"size:50;not null" json:"key"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Required    bool      `gorm:"not null;default:false" json:"required"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionRoleAssignment holds one slot per (session, scenario role)
// with a nullable assigned participant. Slots are created idempotently
// by the ensure pass and never duplicated.
type SessionRoleAssignment struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	SessionID      uint         `gorm:"not null;uniqueIndex:idx_session_role" json:"session_id"`
	ScenarioRoleID uint         `gorm:"not null;uniqueIndex:idx_session_role" json:"scenario_role_id"`
	ScenarioRole   ScenarioRole `gorm:"foreignKey:ScenarioRoleID" json:"scenario_role,omitempty"`
	ParticipantID  *uint        `json:"participant_id"`
	AssignedByID   *uint        `json:"assigned_by_id"`
	AssignedAt     *time.Time   `json:"assigned_at"`
	CreatedAt      time.Time    `json:"created_at"`
}
