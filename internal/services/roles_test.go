package services

import (
	"testing"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

func rolesFixture(t *testing.T) (*gorm.DB, *models.Session, *models.User, []models.ScenarioRole) {
	t.Helper()
	db := openTestDB(t)
	owner := createTestUser(t, db, "facil")
	scenario := createTestScenario(t, db, owner.ID, "Exercise Alpha")

	roles := []models.ScenarioRole{
		{ScenarioID: scenario.ID, Key: "ops_lead", Name: "Operations Lead", Required: true, SortOrder: 1},
		{ScenarioID: scenario.ID, Key: "pio", Name: "Public Information Officer", SortOrder: 2},
		{ScenarioID: scenario.ID, Key: "liaison", Name: "Agency Liaison", SortOrder: 3},
	}
	if err := db.Create(&roles).Error; err != nil {
		t.Fatalf("create roles: %v", err)
	}

	session := createTestSession(t, db, scenario.ID, owner.ID)
	return db, session, owner, roles
}

func countSlots(t *testing.T, db *gorm.DB, sessionID uint) int {
	t.Helper()
	var count int64
	db.Model(&models.SessionRoleAssignment{}).Where("session_id = ?", sessionID).Count(&count)
	return int(count)
}

func TestEnsureSlots_Idempotent(t *testing.T) {
	db, session, _, roles := rolesFixture(t)
	svc := NewRoleService(db)

	for i := 0; i < 3; i++ {
		if err := svc.EnsureSlots(session.ID); err != nil {
			t.Fatalf("EnsureSlots call %d: %v", i+1, err)
		}
	}

	if got := countSlots(t, db, session.ID); got != len(roles) {
		t.Errorf("slots = %d, want exactly one per role (%d)", got, len(roles))
	}
}

func TestEnsureSlots_ZeroRolesNoOp(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "facil")
	scenario := createTestScenario(t, db, owner.ID, "No roles")
	session := createTestSession(t, db, scenario.ID, owner.ID)

	svc := NewRoleService(db)
	if err := svc.EnsureSlots(session.ID); err != nil {
		t.Fatalf("EnsureSlots: %v", err)
	}
	if got := countSlots(t, db, session.ID); got != 0 {
		t.Errorf("slots = %d, want 0", got)
	}
}

func TestEnsureSlots_FillsOnlyMissing(t *testing.T) {
	db, session, _, roles := rolesFixture(t)
	svc := NewRoleService(db)

	if err := svc.EnsureSlots(session.ID); err != nil {
		t.Fatalf("EnsureSlots: %v", err)
	}

	// A role added to the scenario after the first ensure pass gets a
	// slot on the next pass; existing slots stay put.
	extra := models.ScenarioRole{ScenarioID: roles[0].ScenarioID, Key: "safety", Name: "Safety Officer", SortOrder: 4}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("create extra role: %v", err)
	}

	if err := svc.EnsureSlots(session.ID); err != nil {
		t.Fatalf("second EnsureSlots: %v", err)
	}
	if got := countSlots(t, db, session.ID); got != len(roles)+1 {
		t.Errorf("slots = %d, want %d", got, len(roles)+1)
	}
}

func TestAssign_RequiresJoinedParticipant(t *testing.T) {
	db, session, owner, roles := rolesFixture(t)
	svc := NewRoleService(db)
	sessions := NewSessionService(db)

	if err := svc.EnsureSlots(session.ID); err != nil {
		t.Fatalf("EnsureSlots: %v", err)
	}

	// Not joined: assignment refused.
	if _, err := svc.Assign(session.ID, roles[0].ID, 999, owner.ID); err == nil {
		t.Fatal("expected error assigning someone who never joined")
	}

	joined, err := sessions.JoinSession(session.JoinCode, "Alice", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	slot, err := svc.Assign(session.ID, roles[0].ID, joined.Participant.ID, owner.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if slot.ParticipantID == nil || *slot.ParticipantID != joined.Participant.ID {
		t.Error("slot does not hold the assigned participant")
	}
	if slot.AssignedAt == nil {
		t.Error("assignment timestamp missing")
	}
}

func TestAssign_MissingSlotIsError(t *testing.T) {
	db, session, owner, roles := rolesFixture(t)
	svc := NewRoleService(db)
	sessions := NewSessionService(db)

	joined, err := sessions.JoinSession(session.JoinCode, "Alice", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	// EnsureSlots never ran; the slot does not exist and is not
	// auto-created.
	if _, err := svc.Assign(session.ID, roles[0].ID, joined.Participant.ID, owner.ID); err == nil {
		t.Fatal("expected error assigning into a non-existent slot")
	}
}

func TestClear_EmptiesSlot(t *testing.T) {
	db, session, owner, roles := rolesFixture(t)
	svc := NewRoleService(db)
	sessions := NewSessionService(db)

	if err := svc.EnsureSlots(session.ID); err != nil {
		t.Fatalf("EnsureSlots: %v", err)
	}
	joined, err := sessions.JoinSession(session.JoinCode, "Alice", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.Assign(session.ID, roles[0].ID, joined.Participant.ID, owner.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	slot, err := svc.Clear(session.ID, roles[0].ID, owner.ID)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if slot.ParticipantID != nil {
		t.Error("cleared slot still holds a participant")
	}
}

func TestGetRoster_EnsuresAndReturnsMapping(t *testing.T) {
	db, session, _, roles := rolesFixture(t)
	svc := NewRoleService(db)
	sessions := NewSessionService(db)

	if _, err := sessions.JoinSession(session.JoinCode, "Alice", ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	roster, err := svc.GetRoster(session.ID)
	if err != nil {
		t.Fatalf("GetRoster: %v", err)
	}
	if len(roster.Participants) != 1 {
		t.Errorf("participants = %d, want 1", len(roster.Participants))
	}
	if len(roster.Slots) != len(roles) {
		t.Errorf("slots = %d, want %d", len(roster.Slots), len(roles))
	}
	for _, slot := range roster.Slots {
		if slot.ParticipantID != nil {
			t.Error("fresh slot should be unassigned")
		}
		if slot.ScenarioRole.ID == 0 {
			t.Error("slot missing preloaded role")
		}
	}
}
