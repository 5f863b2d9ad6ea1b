package models

import "time"

type Scenario struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	OwnerID          uint   `gorm:"not null;index" json:"owner_id"`
	Owner            User   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Title            string `gorm:"size:255;not null" json:"title"`
	Description      string `gorm:"type:text" json:"description"`
	EventDate        string `gorm:"size:20" json:"event_date"`
	EventTime        string `gorm:"size:20" json:"event_time"`
	Timezone         string `gorm:"size:64" json:"timezone"`
	Location         string `gorm:"size:255" json:"location"`
	SituationType    string `gorm:"size:100" json:"situation_type"`
	ShortDescription string `gorm:"size:500" json:"short_description"`

	CasualtiesInjured    int `gorm:"not null;default:0" json:"casualties_injured"`
	CasualtiesFatalities int `gorm:"not null;default:0" json:"casualties_fatalities"`
	CasualtiesUninjured  int `gorm:"not null;default:0" json:"casualties_uninjured"`
	CasualtiesUnknown    int `gorm:"not null;default:0" json:"casualties_unknown"`

	Injects []ScenarioInject `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE" json:"injects,omitempty"`
	Roles   []ScenarioRole   `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
	Shares  []ScenarioShare  `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE" json:"shares,omitempty"`

	UpdatedBy uint      `gorm:"default:0" json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScenarioShare grants a co-facilitator access to someone else's scenario.
type ScenarioShare struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ScenarioID uint      `gorm:"not null;uniqueIndex:idx_scenario_share" json:"scenario_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_scenario_share" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Access     string    `gorm:"size:10;not null;default:'read'" json:"access"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	ShareAccessRead  = "read"
	ShareAccessWrite = "write"
)
