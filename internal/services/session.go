package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

// ErrInvalidJoinCode distinguishes a bad join code from other
// failures so the caller can show a clearer message.
var ErrInvalidJoinCode = errors.New("invalid join code")

type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

func (s *SessionService) CreateSession(scenarioID, ownerID uint, title string) (*models.Session, error) {
	var scenario models.Scenario
	if err := s.db.First(&scenario, scenarioID).Error; err != nil {
		return nil, errors.New("scenario not found")
	}

	if title == "" {
		title = scenario.Title
	}

	session := models.Session{
		ScenarioID: scenarioID,
		OwnerID:    ownerID,
		Title:      title,
		JoinCode:   s.generateUniqueJoinCode(),
		Status:     models.SessionStatusDraft,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Scenario").First(&session, session.ID)
	return &session, nil
}

func (s *SessionService) GetSession(sessionID uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.Preload("Scenario").First(&session, sessionID).Error; err != nil {
		return nil, errors.New("session not found")
	}
	return &session, nil
}

type SessionSummary struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	ScenarioTitle    string    `json:"scenario_title"`
	JoinCode         string    `json:"join_code"`
	Status           string    `json:"status"`
	ParticipantCount int       `json:"participant_count"`
	CreatedAt        time.Time `json:"created_at"`
}

func (s *SessionService) ListSessions(ownerID uint) ([]SessionSummary, error) {
	var sessions []models.Session
	if err := s.db.Where("owner_id = ?", ownerID).
		Preload("Scenario").
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	result := make([]SessionSummary, len(sessions))
	for i, sess := range sessions {
		var participantCount int64
		s.db.Model(&models.SessionParticipant{}).
			Where("session_id = ?", sess.ID).
			Count(&participantCount)

		result[i] = SessionSummary{
			ID:               sess.ID,
			Title:            sess.Title,
			ScenarioTitle:    sess.Scenario.Title,
			JoinCode:         sess.JoinCode,
			Status:           sess.Status,
			ParticipantCount: int(participantCount),
			CreatedAt:        sess.CreatedAt,
		}
	}
	return result, nil
}

// SetStatus is deliberately permissive: any status may follow any
// other. Start stamps started_at and clears ended_at; end stamps
// ended_at.
func (s *SessionService) SetStatus(sessionID, ownerID uint, status string) (*models.Session, error) {
	if status != models.SessionStatusDraft &&
		status != models.SessionStatusLive &&
		status != models.SessionStatusEnded {
		return nil, errors.New("invalid status")
	}

	var session models.Session
	if err := s.db.Where("id = ? AND owner_id = ?", sessionID, ownerID).First(&session).Error; err != nil {
		return nil, errors.New("session not found")
	}

	now := time.Now()
	session.Status = status
	switch status {
	case models.SessionStatusLive:
		session.StartedAt = &now
		session.EndedAt = nil
	case models.SessionStatusEnded:
		session.EndedAt = &now
	}

	if err := s.db.Save(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Restart wipes all runtime-derived rows and forces the session back
// to draft. Destructive; the caller gates it on operator confirmation.
// One transaction so a mid-sequence failure leaves nothing half-wiped.
func (s *SessionService) Restart(sessionID, ownerID uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.Where("id = ? AND owner_id = ?", sessionID, ownerID).First(&session).Error; err != nil {
		return nil, errors.New("session not found")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.SessionInject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.SessionAction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.SessionSituation{}).Error; err != nil {
			return err
		}
		return tx.Model(&session).Updates(map[string]interface{}{
			"status":     models.SessionStatusDraft,
			"started_at": nil,
			"ended_at":   nil,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("restart failed: %w", err)
	}

	s.db.First(&session, sessionID)
	return &session, nil
}

type JoinResult struct {
	Session     models.Session            `json:"session"`
	Participant models.SessionParticipant `json:"participant"`
	IsRejoin    bool                      `json:"is_rejoin"`
}

// JoinSession validates a join code (case-insensitive, uppercased at
// entry) and creates an anonymous participant identity unless the
// supplied token already belongs to one.
func (s *SessionService) JoinSession(code, nickname, token string) (*JoinResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var session models.Session
	if err := s.db.Where("join_code = ? AND status != ?", code, models.SessionStatusEnded).
		First(&session).Error; err != nil {
		return nil, ErrInvalidJoinCode
	}

	if token != "" {
		var existing models.SessionParticipant
		if err := s.db.Where("session_id = ? AND token = ?", session.ID, token).
			First(&existing).Error; err == nil {
			if nickname != "" && nickname != existing.Nickname {
				existing.Nickname = nickname
				s.db.Save(&existing)
			}
			return &JoinResult{Session: session, Participant: existing, IsRejoin: true}, nil
		}
	}

	participant := models.SessionParticipant{
		SessionID: session.ID,
		Nickname:  nickname,
		Token:     generateParticipantToken(),
		JoinedAt:  time.Now(),
	}
	if err := s.db.Create(&participant).Error; err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	return &JoinResult{Session: session, Participant: participant}, nil
}

func (s *SessionService) GetParticipants(sessionID uint) ([]models.SessionParticipant, error) {
	var participants []models.SessionParticipant
	if err := s.db.Where("session_id = ?", sessionID).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// GetParticipantByToken resolves a participant identity for
// token-authenticated requests.
func (s *SessionService) GetParticipantByToken(sessionID uint, token string) (*models.SessionParticipant, error) {
	var participant models.SessionParticipant
	if err := s.db.Where("session_id = ? AND token = ?", sessionID, token).
		First(&participant).Error; err != nil {
		return nil, errors.New("participant not found")
	}
	return &participant, nil
}

// GetSituation returns the session's mutable operating picture,
// lazily seeding it from the scenario baseline on first read.
func (s *SessionService) GetSituation(sessionID uint) (*models.SessionSituation, error) {
	var situation models.SessionSituation
	if err := s.db.Where("session_id = ?", sessionID).First(&situation).Error; err == nil {
		return &situation, nil
	}

	var session models.Session
	if err := s.db.Preload("Scenario").First(&session, sessionID).Error; err != nil {
		return nil, errors.New("session not found")
	}

	situation = models.SessionSituation{
		SessionID:            sessionID,
		Location:             session.Scenario.Location,
		SituationType:        session.Scenario.SituationType,
		ShortDescription:     session.Scenario.ShortDescription,
		Description:          session.Scenario.Description,
		CasualtiesInjured:    session.Scenario.CasualtiesInjured,
		CasualtiesFatalities: session.Scenario.CasualtiesFatalities,
		CasualtiesUninjured:  session.Scenario.CasualtiesUninjured,
		CasualtiesUnknown:    session.Scenario.CasualtiesUnknown,
	}
	if err := s.db.Create(&situation).Error; err != nil {
		return nil, err
	}
	return &situation, nil
}

type SituationInput struct {
	Location         string `json:"location"`
	SituationType    string `json:"situation_type"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`

	CasualtiesInjured    int `json:"casualties_injured"`
	CasualtiesFatalities int `json:"casualties_fatalities"`
	CasualtiesUninjured  int `json:"casualties_uninjured"`
	CasualtiesUnknown    int `json:"casualties_unknown"`
}

func (s *SessionService) UpdateSituation(sessionID, userID uint, in SituationInput) (*models.SessionSituation, error) {
	if in.CasualtiesInjured < 0 || in.CasualtiesFatalities < 0 ||
		in.CasualtiesUninjured < 0 || in.CasualtiesUnknown < 0 {
		return nil, errors.New("casualty counts must be non-negative")
	}

	situation, err := s.GetSituation(sessionID)
	if err != nil {
		return nil, err
	}

	situation.Location = in.Location
	situation.SituationType = in.SituationType
	situation.ShortDescription = in.ShortDescription
	situation.Description = in.Description
	situation.CasualtiesInjured = in.CasualtiesInjured
	situation.CasualtiesFatalities = in.CasualtiesFatalities
	situation.CasualtiesUninjured = in.CasualtiesUninjured
	situation.CasualtiesUnknown = in.CasualtiesUnknown
	situation.UpdatedBy = userID

	if err := s.db.Save(situation).Error; err != nil {
		return nil, err
	}
	return situation, nil
}

const joinCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (s *SessionService) generateUniqueJoinCode() string {
	for {
		b := make([]byte, 6)
		for i := range b {
			b[i] = joinCodeCharset[mrand.Intn(len(joinCodeCharset))]
		}
		code := string(b)

		var count int64
		s.db.Model(&models.Session{}).
			Where("join_code = ?", code).
			Count(&count)
		if count == 0 {
			return code
		}
	}
}

func generateParticipantToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
