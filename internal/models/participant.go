package models

import "time"

// SessionParticipant records that someone joined a session via its
// join code. The token is the participant's anonymous identity for
// reconnects and subsequent requests.
type SessionParticipant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Nickname  string    `gorm:"size:100;not null" json:"nickname"`
	Token     string    `gorm:"size:64;index" json:"token,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}
