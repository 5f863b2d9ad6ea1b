package services

import (
	"errors"
	"time"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

type InjectService struct {
	db *gorm.DB
}

func NewInjectService(db *gorm.DB) *InjectService {
	return &InjectService{db: db}
}

type InjectInput struct {
	Title      string `json:"title" binding:"required,max=255"`
	Body       string `json:"body" binding:"required"`
	Channel    string `json:"channel"`
	Severity   string `json:"severity"`
	SenderName string `json:"sender_name"`
	SenderOrg  string `json:"sender_org"`
}

func validChannel(channel string) bool {
	switch channel {
	case models.ChannelOps, models.ChannelMedia, models.ChannelSocial, models.ChannelPulse:
		return true
	}
	return false
}

func (s *InjectService) CreateInject(ownerID uint, in InjectInput) (*models.Inject, error) {
	if in.Channel == "" {
		in.Channel = models.ChannelOps
	}
	if !validChannel(in.Channel) {
		return nil, errors.New("invalid channel")
	}

	inject := models.Inject{
		OwnerID:    ownerID,
		Title:      in.Title,
		Body:       in.Body,
		Channel:    in.Channel,
		Severity:   in.Severity,
		SenderName: in.SenderName,
		SenderOrg:  in.SenderOrg,
	}
	if err := s.db.Create(&inject).Error; err != nil {
		return nil, err
	}
	return &inject, nil
}

func (s *InjectService) UpdateInject(injectID, userID uint, in InjectInput) (*models.Inject, error) {
	var inject models.Inject
	if err := s.db.Where("id = ? AND owner_id = ?", injectID, userID).First(&inject).Error; err != nil {
		return nil, errors.New("inject not found")
	}
	if in.Channel == "" {
		in.Channel = inject.Channel
	}
	if !validChannel(in.Channel) {
		return nil, errors.New("invalid channel")
	}

	inject.Title = in.Title
	inject.Body = in.Body
	inject.Channel = in.Channel
	inject.Severity = in.Severity
	inject.SenderName = in.SenderName
	inject.SenderOrg = in.SenderOrg

	if err := s.db.Save(&inject).Error; err != nil {
		return nil, err
	}
	return &inject, nil
}

// DeleteInject removes the inject row outright, orphaning attachments
// in every scenario that references it. Detach is the safe operation;
// this one is deliberately destructive and the UI warns about it.
// Delivery records stay: actions reference them, and the action log
// is append-only.
func (s *InjectService) DeleteInject(injectID, userID uint) error {
	var inject models.Inject
	if err := s.db.Where("id = ? AND owner_id = ?", injectID, userID).First(&inject).Error; err != nil {
		return errors.New("inject not found")
	}
	s.db.Where("inject_id = ?", injectID).Delete(&models.ScenarioInject{})
	return s.db.Delete(&inject).Error
}

func (s *InjectService) ListInjects(ownerID uint) ([]models.Inject, error) {
	var injects []models.Inject
	if err := s.db.Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&injects).Error; err != nil {
		return nil, err
	}
	return injects, nil
}

// Attach links an inject into a scenario at the end of the authored
// order. Create-then-attach is two steps; a failure in between leaves
// a standalone inject, which is harmless.
func (s *InjectService) Attach(scenarioID, injectID uint, scheduledAt *time.Time) (*models.ScenarioInject, error) {
	var scenario models.Scenario
	if err := s.db.First(&scenario, scenarioID).Error; err != nil {
		return nil, errors.New("scenario not found")
	}
	var inject models.Inject
	if err := s.db.First(&inject, injectID).Error; err != nil {
		return nil, errors.New("inject not found")
	}

	var maxIndex int
	s.db.Model(&models.ScenarioInject{}).
		Where("scenario_id = ?", scenarioID).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&maxIndex)

	attachment := models.ScenarioInject{
		ScenarioID:  scenarioID,
		InjectID:    injectID,
		ScheduledAt: scheduledAt,
		OrderIndex:  maxIndex + 1,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Inject").First(&attachment, attachment.ID)
	return &attachment, nil
}

// CreateAndAttach creates a new inject and immediately attaches it to
// the scenario.
func (s *InjectService) CreateAndAttach(scenarioID, ownerID uint, in InjectInput, scheduledAt *time.Time) (*models.ScenarioInject, error) {
	inject, err := s.CreateInject(ownerID, in)
	if err != nil {
		return nil, err
	}
	return s.Attach(scenarioID, inject.ID, scheduledAt)
}

// Detach removes only the join row; the inject itself survives and may
// remain attached to other scenarios.
func (s *InjectService) Detach(scenarioID, attachmentID uint) error {
	result := s.db.Where("id = ? AND scenario_id = ?", attachmentID, scenarioID).
		Delete(&models.ScenarioInject{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("attachment not found")
	}
	return nil
}

// Reschedule sets or clears the scheduled delivery time on one
// attachment. Nil means manual/immediate only.
func (s *InjectService) Reschedule(scenarioID, attachmentID uint, scheduledAt *time.Time) (*models.ScenarioInject, error) {
	var attachment models.ScenarioInject
	if err := s.db.Where("id = ? AND scenario_id = ?", attachmentID, scenarioID).
		First(&attachment).Error; err != nil {
		return nil, errors.New("attachment not found")
	}

	if err := s.db.Model(&attachment).Update("scheduled_at", scheduledAt).Error; err != nil {
		return nil, err
	}
	attachment.ScheduledAt = scheduledAt

	s.db.Preload("Inject").First(&attachment, attachment.ID)
	return &attachment, nil
}

func (s *InjectService) ListAttachments(scenarioID uint) ([]models.ScenarioInject, error) {
	var attachments []models.ScenarioInject
	if err := s.db.Where("scenario_id = ?", scenarioID).
		Preload("Inject").
		Order("order_index ASC, created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
