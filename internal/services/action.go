package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

// ActionService appends participant decisions to the immutable action
// log and synthesizes official-response injects for decisions that
// warrant one.
type ActionService struct {
	db       *gorm.DB
	delivery *DeliveryService
}

func NewActionService(db *gorm.DB, delivery *DeliveryService) *ActionService {
	return &ActionService{db: db, delivery: delivery}
}

type ActionInput struct {
	SessionInjectID uint   `json:"session_inject_id" binding:"required"`
	Feed            string `json:"feed" binding:"required"`
	ActionType      string `json:"action_type" binding:"required"`
	Comment         string `json:"comment"`
}

// RecordAction appends one log row. Inbox items accept
// ignore/escalate/act; pulse items accept confirm/deny, which are
// stored as act/ignore with the true semantic kept only in the
// comment prefix. act, confirm and deny additionally deliver a
// synthesized official-response inject into the session.
func (s *ActionService) RecordAction(sessionID, participantID uint, in ActionInput) (*models.SessionAction, error) {
	if in.Feed != models.FeedInbox && in.Feed != models.FeedPulse {
		return nil, errors.New("feed must be inbox or pulse")
	}

	var record models.SessionInject
	if err := s.db.Preload("Inject").
		Where("id = ? AND session_id = ?", in.SessionInjectID, sessionID).
		First(&record).Error; err != nil {
		return nil, errors.New("delivered inject not found in session")
	}

	storedType, comment, err := mapDecision(in.Feed, in.ActionType, in.Comment)
	if err != nil {
		return nil, err
	}

	action := models.SessionAction{
		SessionID:       sessionID,
		SessionInjectID: in.SessionInjectID,
		ParticipantID:   participantID,
		Feed:            in.Feed,
		ActionType:      storedType,
		Comment:         comment,
	}
	if err := s.db.Create(&action).Error; err != nil {
		return nil, err
	}

	if synthesizesResponse(in.Feed, in.ActionType) {
		s.deliverResponse(sessionID, &record, in)
	}

	return &action, nil
}

// mapDecision translates the wire decision into the stored action
// type. Pulse confirm/deny collapse onto act/ignore; only the comment
// prefix preserves which one it was.
func mapDecision(feed, actionType, comment string) (string, string, error) {
	if feed == models.FeedPulse {
		switch actionType {
		case models.DecisionConfirm:
			return models.ActionAct, prefixComment("CONFIRM", comment), nil
		case models.DecisionDeny:
			return models.ActionIgnore, prefixComment("DENY", comment), nil
		default:
			return "", "", errors.New("pulse items accept confirm or deny")
		}
	}

	switch actionType {
	case models.ActionIgnore, models.ActionEscalate, models.ActionAct:
		return actionType, comment, nil
	default:
		return "", "", errors.New("inbox items accept ignore, escalate or act")
	}
}

func prefixComment(prefix, comment string) string {
	if comment == "" {
		return prefix
	}
	return prefix + ": " + comment
}

func synthesizesResponse(feed, actionType string) bool {
	if feed == models.FeedPulse {
		return actionType == models.DecisionConfirm || actionType == models.DecisionDeny
	}
	return actionType == models.ActionAct
}

// deliverResponse chains an official response inject from the
// decision. Delivery failure is not fatal to the logged action; the
// log row already committed and the operator can retry manually.
func (s *ActionService) deliverResponse(sessionID uint, record *models.SessionInject, in ActionInput) {
	token := strings.ToUpper(in.ActionType)
	body := fmt.Sprintf("Action taken: %s\nSource feed: %s\nIn response to message #%d",
		token, in.Feed, record.ID)
	if in.Comment != "" {
		body += "\nOperator comment: " + in.Comment
	}

	s.delivery.DeliverAdHoc(sessionID, record.Inject.OwnerID, InjectInput{
		Title:      "UPDATE: " + record.Inject.Title,
		Body:       body,
		Channel:    models.ChannelOps,
		SenderName: "Exercise Control",
		SenderOrg:  "EXCON",
	})
}

func (s *ActionService) ListActions(sessionID uint) ([]models.SessionAction, error) {
	var actions []models.SessionAction
	if err := s.db.Where("session_id = ?", sessionID).
		Preload("SessionInject").
		Preload("SessionInject.Inject").
		Order("created_at ASC").
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
