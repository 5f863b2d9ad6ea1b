package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"
	"github.com/sossolinski/decisionary-app-sub000/internal/services"
	"github.com/sossolinski/decisionary-app-sub000/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func openHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Scenario{},
		&models.ScenarioShare{},
		&models.Inject{},
		&models.ScenarioInject{},
		&models.ScenarioRole{},
		&models.Session{},
		&models.SessionSituation{},
		&models.SessionInject{},
		&models.SessionAction{},
		&models.SessionRoleAssignment{},
		&models.SessionParticipant{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newPlayTestEnv(t *testing.T) (*gin.Engine, *gorm.DB, *models.Session) {
	t.Helper()
	db := openHandlerTestDB(t)

	owner := models.User{Username: "facil", PasswordHash: "x", Role: models.UserRoleFacilitator}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	scenario := models.Scenario{OwnerID: owner.ID, Title: "Harbor drill", Location: "Pier 4"}
	if err := db.Create(&scenario).Error; err != nil {
		t.Fatalf("create scenario: %v", err)
	}

	sessions := services.NewSessionService(db)
	session, err := sessions.CreateSession(scenario.ID, owner.ID, "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	delivery := services.NewDeliveryService(db)
	actions := services.NewActionService(db, delivery)
	h := NewPlayHandler(sessions, delivery, actions, ws.NewHub())

	r := gin.New()
	r.PUT("/api/v1/play/sessions/:id/situation", h.UpdateSituation)

	return r, db, session
}

func TestPlayUpdateSituation_StampsParticipant(t *testing.T) {
	r, db, session := newPlayTestEnv(t)

	sessions := services.NewSessionService(db)
	joined, err := sessions.JoinSession(session.JoinCode, "Alice", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	body, _ := json.Marshal(services.SituationInput{
		Location:          "Pier 4",
		CasualtiesInjured: 5,
	})
	url := fmt.Sprintf("/api/v1/play/sessions/%d/situation?token=%s", session.ID, joined.Participant.Token)
	req := httptest.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var situation models.SessionSituation
	if err := db.Where("session_id = ?", session.ID).First(&situation).Error; err != nil {
		t.Fatalf("load situation: %v", err)
	}
	if situation.UpdatedBy != joined.Participant.ID {
		t.Errorf("updated_by = %d, want participant %d", situation.UpdatedBy, joined.Participant.ID)
	}
	if situation.CasualtiesInjured != 5 {
		t.Errorf("injured = %d, want 5", situation.CasualtiesInjured)
	}
}

func TestPlayUpdateSituation_RejectsMissingToken(t *testing.T) {
	r, _, session := newPlayTestEnv(t)

	body, _ := json.Marshal(services.SituationInput{})
	url := fmt.Sprintf("/api/v1/play/sessions/%d/situation", session.ID)
	req := httptest.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
