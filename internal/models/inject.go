package models

import "time"

// Inject is a reusable message unit. It is owned independently of any
// scenario: the same inject may be attached to several scenarios, and
// deleting it outright orphans those attachments.
type Inject struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OwnerID    uint      `gorm:"not null;index" json:"owner_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Channel    string    `gorm:"size:20;not null;default:'ops'" json:"channel"`
	Severity   string    `gorm:"size:50" json:"severity"`
	SenderName string    `gorm:"size:100" json:"sender_name"`
	SenderOrg  string    `gorm:"size:100" json:"sender_org"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	ChannelOps    = "ops"
	ChannelMedia  = "media"
	ChannelSocial = "social"
	// ChannelPulse carries unverified rumor content; participants
	// confirm/deny it instead of ignore/escalate/act.
	ChannelPulse = "pulse"
)

// ScenarioInject attaches an inject to a scenario with a scheduled
// delivery time (nil = manual/immediate) and a facilitator-controlled
// order index, unique per scenario and intended to be dense 1..N.
type ScenarioInject struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ScenarioID  uint       `gorm:"not null;uniqueIndex:idx_scenario_order" json:"scenario_id"`
	InjectID    uint       `gorm:"not null;index" json:"inject_id"`
	Inject      Inject     `gorm:"foreignKey:InjectID" json:"inject,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	OrderIndex  int        `gorm:"not null;uniqueIndex:idx_scenario_order" json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
}
