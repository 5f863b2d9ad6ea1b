package services

import (
	"testing"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

func orderingFixture(t *testing.T, db *gorm.DB, indices []int) (uint, []models.ScenarioInject) {
	t.Helper()
	owner := createTestUser(t, db, "facil")
	scenario := createTestScenario(t, db, owner.ID, "Exercise Alpha")

	attachments := make([]models.ScenarioInject, len(indices))
	for i, idx := range indices {
		inject := createTestInject(t, db, owner.ID, "Inject", models.ChannelOps)
		attachments[i] = *attachTestInject(t, db, scenario.ID, inject.ID, idx, nil)
	}
	return scenario.ID, attachments
}

func loadOrder(t *testing.T, db *gorm.DB, scenarioID uint) []models.ScenarioInject {
	t.Helper()
	var attachments []models.ScenarioInject
	if err := db.Where("scenario_id = ?", scenarioID).
		Order("order_index ASC, created_at ASC").
		Find(&attachments).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	return attachments
}

func TestMoveInject_CleanSwapDown(t *testing.T) {
	db := openTestDB(t)
	scenarioID, attachments := orderingFixture(t, db, []int{1, 2, 3})
	svc := NewOrderingService(db)

	result, err := svc.MoveInject(scenarioID, attachments[1].ID, MoveDown)
	if err != nil {
		t.Fatalf("MoveInject: %v", err)
	}
	if !result.Swapped || result.Renumbered {
		t.Fatalf("result = %+v, want swapped only", result)
	}

	order := loadOrder(t, db, scenarioID)
	if len(order) != 3 {
		t.Fatalf("expected 3 attachments, got %d", len(order))
	}
	// Index values stay {1,2,3}; the moved attachment is now third.
	for i, want := range []int{1, 2, 3} {
		if order[i].OrderIndex != want {
			t.Errorf("position %d index = %d, want %d", i, order[i].OrderIndex, want)
		}
	}
	if order[2].ID != attachments[1].ID {
		t.Errorf("moved attachment should be third, got id %d", order[2].ID)
	}
	if order[1].ID != attachments[2].ID {
		t.Errorf("neighbor should be second, got id %d", order[1].ID)
	}
	// Untouched item keeps its slot.
	if order[0].ID != attachments[0].ID {
		t.Errorf("first attachment moved unexpectedly")
	}
}

func TestMoveInject_CleanSwapUp(t *testing.T) {
	db := openTestDB(t)
	scenarioID, attachments := orderingFixture(t, db, []int{1, 2, 3})
	svc := NewOrderingService(db)

	result, err := svc.MoveInject(scenarioID, attachments[2].ID, MoveUp)
	if err != nil {
		t.Fatalf("MoveInject: %v", err)
	}
	if !result.Swapped {
		t.Fatalf("result = %+v, want swapped", result)
	}

	order := loadOrder(t, db, scenarioID)
	if order[1].ID != attachments[2].ID {
		t.Errorf("moved attachment should be second, got id %d", order[1].ID)
	}
}

func TestMoveInject_EdgeNoOp(t *testing.T) {
	db := openTestDB(t)
	scenarioID, attachments := orderingFixture(t, db, []int{1, 2, 3})
	svc := NewOrderingService(db)

	for _, tt := range []struct {
		name      string
		id        uint
		direction string
	}{
		{"first up", attachments[0].ID, MoveUp},
		{"last down", attachments[2].ID, MoveDown},
	} {
		result, err := svc.MoveInject(scenarioID, tt.id, tt.direction)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if result.Swapped || result.Renumbered {
			t.Errorf("%s: result = %+v, want no-op", tt.name, result)
		}
	}
}

func TestMoveInject_ZeroIndexTriggersRenumberWithoutSwap(t *testing.T) {
	db := openTestDB(t)
	scenarioID, attachments := orderingFixture(t, db, []int{0, 2, 3})
	svc := NewOrderingService(db)

	result, err := svc.MoveInject(scenarioID, attachments[1].ID, MoveUp)
	if err != nil {
		t.Fatalf("MoveInject: %v", err)
	}
	if !result.Renumbered || result.Swapped {
		t.Fatalf("result = %+v, want renumbered without swap", result)
	}

	order := loadOrder(t, db, scenarioID)
	for i, want := range []int{1, 2, 3} {
		if order[i].OrderIndex != want {
			t.Errorf("position %d index = %d, want %d", i, order[i].OrderIndex, want)
		}
	}
	// Relative order preserved: the zero-index row sorted first.
	if order[0].ID != attachments[0].ID {
		t.Errorf("renumber changed relative order")
	}
}

func TestMoveInject_RetryAfterRenumberSwaps(t *testing.T) {
	db := openTestDB(t)
	scenarioID, attachments := orderingFixture(t, db, []int{0, 2, 3})
	svc := NewOrderingService(db)

	first, err := svc.MoveInject(scenarioID, attachments[1].ID, MoveUp)
	if err != nil {
		t.Fatalf("first move: %v", err)
	}
	if !first.Renumbered {
		t.Fatalf("first move should renumber, got %+v", first)
	}

	second, err := svc.MoveInject(scenarioID, attachments[1].ID, MoveUp)
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if !second.Swapped || second.Renumbered {
		t.Fatalf("second move = %+v, want swap on clean indices", second)
	}

	order := loadOrder(t, db, scenarioID)
	if order[0].ID != attachments[1].ID {
		t.Errorf("moved attachment should be first after retry")
	}
}

func TestMoveInject_CorruptNeighborRepairsWholeList(t *testing.T) {
	db := openTestDB(t)
	scenarioID, attachments := orderingFixture(t, db, []int{1, 2, 3})
	if err := db.Model(&models.ScenarioInject{}).
		Where("id = ?", attachments[2].ID).
		Update("order_index", 0).Error; err != nil {
		t.Fatalf("corrupt index: %v", err)
	}

	svc := NewOrderingService(db)
	result, err := svc.MoveInject(scenarioID, attachments[1].ID, MoveDown)
	if err != nil {
		t.Fatalf("MoveInject: %v", err)
	}
	if !result.Renumbered || result.Swapped {
		t.Fatalf("result = %+v, want renumber only", result)
	}

	order := loadOrder(t, db, scenarioID)
	seen := map[int]bool{}
	for _, att := range order {
		if att.OrderIndex <= 0 {
			t.Errorf("index %d not repaired", att.OrderIndex)
		}
		if seen[att.OrderIndex] {
			t.Errorf("duplicate index %d after renumber", att.OrderIndex)
		}
		seen[att.OrderIndex] = true
	}
}

func TestIndicesCorrupt_Duplicates(t *testing.T) {
	attachments := []models.ScenarioInject{
		{ID: 1, OrderIndex: 1},
		{ID: 2, OrderIndex: 2},
		{ID: 3, OrderIndex: 2},
	}
	if !indicesCorrupt(attachments, 0, 1) {
		t.Error("duplicate indices should be detected even when the endpoints are clean")
	}

	clean := []models.ScenarioInject{
		{ID: 1, OrderIndex: 1},
		{ID: 2, OrderIndex: 2},
		{ID: 3, OrderIndex: 3},
	}
	if indicesCorrupt(clean, 0, 1) {
		t.Error("clean dense indices flagged as corrupt")
	}
}

func TestMoveInject_InvalidDirection(t *testing.T) {
	db := openTestDB(t)
	scenarioID, attachments := orderingFixture(t, db, []int{1, 2})
	svc := NewOrderingService(db)

	if _, err := svc.MoveInject(scenarioID, attachments[0].ID, "sideways"); err == nil {
		t.Fatal("expected error for invalid direction")
	}
}

func TestMoveInject_UnknownAttachment(t *testing.T) {
	db := openTestDB(t)
	scenarioID, _ := orderingFixture(t, db, []int{1})
	svc := NewOrderingService(db)

	if _, err := svc.MoveInject(scenarioID, 9999, MoveUp); err == nil {
		t.Fatal("expected error for unknown attachment")
	}
}

func TestNormalize_GapsBecomeDense(t *testing.T) {
	db := openTestDB(t)
	scenarioID, _ := orderingFixture(t, db, []int{5, 9, 14})
	svc := NewOrderingService(db)

	if err := svc.Normalize(scenarioID); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	order := loadOrder(t, db, scenarioID)
	for i, want := range []int{1, 2, 3} {
		if order[i].OrderIndex != want {
			t.Errorf("position %d index = %d, want %d", i, order[i].OrderIndex, want)
		}
	}
}
