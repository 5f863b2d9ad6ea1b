package services

import (
	"errors"
	"time"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

// DeliveryService moves scenario-authored injects into a running
// session, exactly once per (session, inject) pair. Delivery is only
// ever triggered by a facilitator action; there is no background
// dispatcher.
type DeliveryService struct {
	db *gorm.DB
}

func NewDeliveryService(db *gorm.DB) *DeliveryService {
	return &DeliveryService{db: db}
}

// DeliverDue delivers every attachment whose scheduled time has
// passed and which has not already been delivered. Safe to call
// repeatedly; a second immediate call delivers nothing.
func (s *DeliveryService) DeliverDue(sessionID uint) (int, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return 0, errors.New("session not found")
	}
	if session.ScenarioID == 0 {
		return 0, nil
	}

	now := time.Now()
	var due []models.ScenarioInject
	if err := s.db.Where("scenario_id = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", session.ScenarioID, now).
		Order("scheduled_at ASC").
		Find(&due).Error; err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	delivered, err := s.deliveredInjectIDs(sessionID)
	if err != nil {
		return 0, err
	}

	// An inject attached to the scenario more than once must still go
	// into the batch only once, or the (session_id, inject_id) unique
	// index rejects the whole insert.
	var pending []models.SessionInject
	for _, att := range due {
		if delivered[att.InjectID] {
			continue
		}
		delivered[att.InjectID] = true
		pending = append(pending, models.SessionInject{
			SessionID:   sessionID,
			InjectID:    att.InjectID,
			DeliveredAt: now,
		})
	}
	if len(pending) == 0 {
		return 0, nil
	}

	if err := s.db.Create(&pending).Error; err != nil {
		return 0, err
	}
	return len(pending), nil
}

// DeliverInject delivers one inject immediately. Returns the existing
// record unchanged if the inject was already delivered.
func (s *DeliveryService) DeliverInject(sessionID, injectID uint) (*models.SessionInject, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return nil, errors.New("session not found")
	}
	var inject models.Inject
	if err := s.db.First(&inject, injectID).Error; err != nil {
		return nil, errors.New("inject not found")
	}

	var existing models.SessionInject
	if err := s.db.Where("session_id = ? AND inject_id = ?", sessionID, injectID).
		First(&existing).Error; err == nil {
		return &existing, nil
	}

	record := models.SessionInject{
		SessionID:   sessionID,
		InjectID:    injectID,
		DeliveredAt: time.Now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Inject").First(&record, record.ID)
	return &record, nil
}

// DeliverAdHoc creates a new inject with no scenario backing and
// delivers it straight into the session. Quick messages and
// synthesized official responses both come through here.
func (s *DeliveryService) DeliverAdHoc(sessionID, ownerID uint, in InjectInput) (*models.SessionInject, error) {
	if in.Channel == "" {
		in.Channel = models.ChannelOps
	}
	if !validChannel(in.Channel) {
		return nil, errors.New("invalid channel")
	}

	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return nil, errors.New("session not found")
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

	return s.DeliverInject(sessionID, inject.ID)
}

// DeliverNext delivers the earliest undelivered attachment by the
// scenario's authored order, ignoring schedule times.
func (s *DeliveryService) DeliverNext(sessionID uint) (*models.SessionInject, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return nil, errors.New("session not found")
	}

	delivered, err := s.deliveredInjectIDs(sessionID)
	if err != nil {
		return nil, err
	}

	var attachments []models.ScenarioInject
	if err := s.db.Where("scenario_id = ?", session.ScenarioID).
		Order("order_index ASC, created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}

	for _, att := range attachments {
		if !delivered[att.InjectID] {
			return s.DeliverInject(sessionID, att.InjectID)
		}
	}
	return nil, errors.New("no pending injects")
}

// Feed returns the delivered injects for one feed: pulse carries only
// pulse-channel content, inbox everything else.
func (s *DeliveryService) Feed(sessionID uint, feed string) ([]models.SessionInject, error) {
	query := s.db.Where("session_id = ?", sessionID).
		Joins("JOIN injects ON injects.id = session_injects.inject_id")

	switch feed {
	case models.FeedPulse:
		query = query.Where("injects.channel = ?", models.ChannelPulse)
	case models.FeedInbox:
		query = query.Where("injects.channel != ?", models.ChannelPulse)
	default:
		return nil, errors.New("feed must be inbox or pulse")
	}

	var records []models.SessionInject
	if err := query.Preload("Inject").
		Order("delivered_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Pending lists the scenario attachments not yet delivered into the
// session, in authored order, for the facilitator's control view.
func (s *DeliveryService) Pending(sessionID uint) ([]models.ScenarioInject, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return nil, errors.New("session not found")
	}

	delivered, err := s.deliveredInjectIDs(sessionID)
	if err != nil {
		return nil, err
	}

	var attachments []models.ScenarioInject
	if err := s.db.Where("scenario_id = ?", session.ScenarioID).
		Preload("Inject").
		Order("order_index ASC, created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}

	var pending []models.ScenarioInject
	for _, att := range attachments {
		if !delivered[att.InjectID] {
			pending = append(pending, att)
		}
	}
	return pending, nil
}

func (s *DeliveryService) deliveredInjectIDs(sessionID uint) (map[uint]bool, error) {
	var records []models.SessionInject
	if err := s.db.Where("session_id = ?", sessionID).Find(&records).Error; err != nil {
		return nil, err
	}
	ids := make(map[uint]bool, len(records))
	for _, r := range records {
		ids[r.InjectID] = true
	}
	return ids, nil
}
