package services

import (
	"errors"
	"time"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleService reconciles a session's role slots against the scenario's
// declared roles and manages participant assignment into them.
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// EnsureSlots upserts one empty slot per scenario role that has no
// slot yet. Conflicts on (session, role) are ignored, so calling this
// on every roster load is safe. No-op when the scenario declares no
// roles.
func (s *RoleService) EnsureSlots(sessionID uint) error {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return errors.New("session not found")
	}

	var roles []models.ScenarioRole
	if err := s.db.Where("scenario_id = ?", session.ScenarioID).Find(&roles).Error; err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}

	roleIDs := make([]uint, len(roles))
	for i, r := range roles {
		roleIDs[i] = r.ID
	}

	var existing []models.SessionRoleAssignment
	if err := s.db.Where("session_id = ? AND scenario_role_id IN ?", sessionID, roleIDs).
		Find(&existing).Error; err != nil {
		return err
	}
	have := make(map[uint]bool, len(existing))
	for _, slot := range existing {
		have[slot.ScenarioRoleID] = true
	}

	var missing []models.SessionRoleAssignment
	for _, r := range roles {
		if !have[r.ID] {
			missing = append(missing, models.SessionRoleAssignment{
				SessionID:      sessionID,
				ScenarioRoleID: r.ID,
			})
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing).Error
}

// Assign sets the participant on an existing slot. The slot must
// already exist (run EnsureSlots first) and the participant must have
// joined the session.
func (s *RoleService) Assign(sessionID, roleID, participantID, actorID uint) (*models.SessionRoleAssignment, error) {
	var slot models.SessionRoleAssignment
	if err := s.db.Where("session_id = ? AND scenario_role_id = ?", sessionID, roleID).
		First(&slot).Error; err != nil {
		return nil, errors.New("role slot not found")
	}

	var participant models.SessionParticipant
	if err := s.db.Where("id = ? AND session_id = ?", participantID, sessionID).
		First(&participant).Error; err != nil {
		return nil, errors.New("participant has not joined this session")
	}

	now := time.Now()
	slot.ParticipantID = &participantID
	slot.AssignedByID = &actorID
	slot.AssignedAt = &now

	if err := s.db.Save(&slot).Error; err != nil {
		return nil, err
	}

	s.db.Preload("ScenarioRole").First(&slot, slot.ID)
	return &slot, nil
}

// Clear empties an existing slot.
func (s *RoleService) Clear(sessionID, roleID, actorID uint) (*models.SessionRoleAssignment, error) {
	var slot models.SessionRoleAssignment
	if err := s.db.Where("session_id = ? AND scenario_role_id = ?", sessionID, roleID).
		First(&slot).Error; err != nil {
		return nil, errors.New("role slot not found")
	}

	now := time.Now()
	if err := s.db.Model(&slot).Updates(map[string]interface{}{
		"participant_id": nil,
		"assigned_by_id": actorID,
		"assigned_at":    now,
	}).Error; err != nil {
		return nil, err
	}

	s.db.Preload("ScenarioRole").First(&slot, slot.ID)
	return &slot, nil
}

type Roster struct {
	Participants []models.SessionParticipant    `json:"participants"`
	Slots        []models.SessionRoleAssignment `json:"slots"`
}

// GetRoster returns who has joined plus the current role→assignee
// mapping, ensuring slots exist first.
func (s *RoleService) GetRoster(sessionID uint) (*Roster, error) {
	if err := s.EnsureSlots(sessionID); err != nil {
		return nil, err
	}

	var participants []models.SessionParticipant
	if err := s.db.Where("session_id = ?", sessionID).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}

	var slots []models.SessionRoleAssignment
	if err := s.db.Where("session_id = ?", sessionID).
		Preload("ScenarioRole").
		Find(&slots).Error; err != nil {
		return nil, err
	}

	return &Roster{Participants: participants, Slots: slots}, nil
}
