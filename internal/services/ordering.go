package services

import (
	"errors"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

// OrderingService keeps order_index values on a scenario's injects
// unique and dense. Indices are not trusted: a zero or duplicate value
// triggers a full renumbering pass instead of a swap, and the caller
// retries the move once the list is clean.
type OrderingService struct {
	db *gorm.DB
}

func NewOrderingService(db *gorm.DB) *OrderingService {
	return &OrderingService{db: db}
}

const (
	MoveUp   = "up"
	MoveDown = "down"

	// Phase-one renumbering parks every row far above any real index
	// so phase two can assign 1..N without tripping the unique
	// (scenario_id, order_index) constraint. The same trick, with a
	// single offset, covers the clean-path swap.
	renumberBase = 1_000_000_000
)

type MoveResult struct {
	// Renumbered is set when corrupt indices were repaired instead of
	// performing the move; the caller must request the move again.
	Renumbered bool `json:"renumbered"`
	Swapped    bool `json:"swapped"`
}

// MoveInject moves one attachment up or down in the scenario's
// authored order. If either the item or its neighbor carries a
// missing index, or any index in the list is duplicated, the list is
// renumbered to dense 1..N and the move is NOT performed.
func (s *OrderingService) MoveInject(scenarioID, attachmentID uint, direction string) (*MoveResult, error) {
	if direction != MoveUp && direction != MoveDown {
		return nil, errors.New("direction must be up or down")
	}

	var attachments []models.ScenarioInject
	if err := s.db.Where("scenario_id = ?", scenarioID).
		Order("order_index ASC, created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}

	pos := -1
	for i := range attachments {
		if attachments[i].ID == attachmentID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, errors.New("attachment not found")
	}

	neighbor := pos - 1
	if direction == MoveDown {
		neighbor = pos + 1
	}
	if neighbor < 0 || neighbor >= len(attachments) {
		// Already at the edge; nothing to do.
		return &MoveResult{}, nil
	}

	if indicesCorrupt(attachments, pos, neighbor) {
		if err := s.renumber(attachments); err != nil {
			return nil, err
		}
		return &MoveResult{Renumbered: true}, nil
	}

	if err := s.swap(&attachments[pos], &attachments[neighbor]); err != nil {
		return nil, err
	}
	return &MoveResult{Swapped: true}, nil
}

// indicesCorrupt reports a zero/negative index on either endpoint of
// the move, or any duplicate index across the list.
func indicesCorrupt(attachments []models.ScenarioInject, pos, neighbor int) bool {
	if attachments[pos].OrderIndex <= 0 || attachments[neighbor].OrderIndex <= 0 {
		return true
	}
	seen := make(map[int]bool, len(attachments))
	for i := range attachments {
		if seen[attachments[i].OrderIndex] {
			return true
		}
		seen[attachments[i].OrderIndex] = true
	}
	return false
}

// renumber rewrites the whole list in two phases: first to unique
// parked indices, then to clean sequential 1..N. Rows keep their
// current sort position (order_index, then created_at).
func (s *OrderingService) renumber(attachments []models.ScenarioInject) error {
	for i := range attachments {
		if err := s.db.Model(&models.ScenarioInject{}).
			Where("id = ?", attachments[i].ID).
			Update("order_index", renumberBase+i).Error; err != nil {
			return err
		}
	}
	for i := range attachments {
		if err := s.db.Model(&models.ScenarioInject{}).
			Where("id = ?", attachments[i].ID).
			Update("order_index", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}

// Normalize repairs a scenario's order indices to dense 1..N without
// moving anything. Safe to call on a clean list.
func (s *OrderingService) Normalize(scenarioID uint) error {
	var attachments []models.ScenarioInject
	if err := s.db.Where("scenario_id = ?", scenarioID).
		Order("order_index ASC, created_at ASC").
		Find(&attachments).Error; err != nil {
		return err
	}
	return s.renumber(attachments)
}

// swap exchanges two clean indices in three writes, parking the first
// row out of range so the unique constraint never sees both rows on
// the same value. A failure partway through leaves the store ahead of
// the caller's view; the caller reloads rather than trusting it.
func (s *OrderingService) swap(a, b *models.ScenarioInject) error {
	origA, origB := a.OrderIndex, b.OrderIndex

	if err := s.db.Model(&models.ScenarioInject{}).
		Where("id = ?", a.ID).
		Update("order_index", renumberBase+origA).Error; err != nil {
		return err
	}
	if err := s.db.Model(&models.ScenarioInject{}).
		Where("id = ?", b.ID).
		Update("order_index", origA).Error; err != nil {
		return err
	}
	if err := s.db.Model(&models.ScenarioInject{}).
		Where("id = ?", a.ID).
		Update("order_index", origB).Error; err != nil {
		return err
	}

	a.OrderIndex, b.OrderIndex = origB, origA
	return nil
}
