package models

import "time"

type Session struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ScenarioID uint       `gorm:"not null;index" json:"scenario_id"`
	Scenario   Scenario   `gorm:"foreignKey:ScenarioID" json:"scenario,omitempty"`
	OwnerID    uint       `gorm:"not null;index" json:"owner_id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	JoinCode   string     `gorm:"size:6;uniqueIndex" json:"join_code"`
	Status     string     `gorm:"size:20;not null;default:'draft'" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at"`
}

const (
	SessionStatusDraft = "draft"
	SessionStatusLive  = "live"
	SessionStatusEnded = "ended"
)

// SessionSituation is the mutable operating picture for one session: a
// copy of the scenario's event and casualty fields that evolves
// independently during the run. One row per session, deleted on restart.
type SessionSituation struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	SessionID        uint   `gorm:"not null;uniqueIndex" json:"session_id"`
	Location         string `gorm:"size:255" json:"location"`
	SituationType    string `gorm:"size:100" json:"situation_type"`
	ShortDescription string `gorm:"size:500" json:"short_description"`
	Description      string `gorm:"type:text" json:"description"`

	CasualtiesInjured    int `gorm:"not null;default:0" json:"casualties_injured"`
	CasualtiesFatalities int `gorm:"not null;default:0" json:"casualties_fatalities"`
	CasualtiesUninjured  int `gorm:"not null;default:0" json:"casualties_uninjured"`
	CasualtiesUnknown    int `gorm:"not null;default:0" json:"casualties_unknown"`

	UpdatedBy uint      `gorm:"default:0" json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionInject records that an inject has been delivered into a
// session. At most one row per (session, inject) pair; delivery logic
// checks for existing rows and the unique index backs it up.
type SessionInject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;uniqueIndex:idx_session_inject" json:"session_id"`
	InjectID    uint      `gorm:"not null;uniqueIndex:idx_session_inject" json:"inject_id"`
	Inject      Inject    `gorm:"foreignKey:InjectID" json:"inject,omitempty"`
	DeliveredAt time.Time `gorm:"index" json:"delivered_at"`
}
