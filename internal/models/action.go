package models

import "time"

// SessionAction is an append-only log entry for a participant decision
// on a delivered inject. Rows are never updated or deleted.
//
// Pulse confirm/deny decisions are stored as "act"/"ignore" with the
// true semantic kept in the comment prefix (CONFIRM: / DENY: ).
type SessionAction struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	SessionID       uint          `gorm:"not null;index" json:"session_id"`
	SessionInjectID uint          `gorm:"not null;index" json:"session_inject_id"`
	SessionInject   SessionInject `gorm:"foreignKey:SessionInjectID" json:"session_inject,omitempty"`
	ParticipantID   uint          `gorm:"default:0" json:"participant_id"`
	Feed            string        `gorm:"size:10;not null" json:"feed"`
	ActionType      string        `gorm:"size:20;not null" json:"action_type"`
	Comment         string        `gorm:"size:1000" json:"comment"`
	CreatedAt       time.Time     `json:"created_at"`
}

const (
	FeedInbox = "inbox"
	FeedPulse = "pulse"

	ActionIgnore   = "ignore"
	ActionEscalate = "escalate"
	ActionAct      = "act"

	// Pulse decisions accepted at the API layer; mapped onto the
	// stored action types above before writing.
	DecisionConfirm = "confirm"
	DecisionDeny    = "deny"
)
