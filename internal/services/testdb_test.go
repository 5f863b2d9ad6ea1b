package services

import (
	"testing"
	"time"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory SQLite DB with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
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

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         models.UserRoleFacilitator,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return &user
}

func createTestScenario(t *testing.T, db *gorm.DB, ownerID uint, title string) *models.Scenario {
	t.Helper()
	scenario := models.Scenario{
		OwnerID:           ownerID,
		Title:             title,
		Location:          "Harbor Airport",
		SituationType:     "aviation incident",
		CasualtiesUnknown: 3,
	}
	if err := db.Create(&scenario).Error; err != nil {
		t.Fatalf("create scenario %q: %v", title, err)
	}
	return &scenario
}

func createTestInject(t *testing.T, db *gorm.DB, ownerID uint, title, channel string) *models.Inject {
	t.Helper()
	inject := models.Inject{
		OwnerID: ownerID,
		Title:   title,
		Body:    "body of " + title,
		Channel: channel,
	}
	if err := db.Create(&inject).Error; err != nil {
		t.Fatalf("create inject %q: %v", title, err)
	}
	return &inject
}

func attachTestInject(t *testing.T, db *gorm.DB, scenarioID, injectID uint, orderIndex int, scheduledAt *time.Time) *models.ScenarioInject {
	t.Helper()
	attachment := models.ScenarioInject{
		ScenarioID:  scenarioID,
		InjectID:    injectID,
		OrderIndex:  orderIndex,
		ScheduledAt: scheduledAt,
	}
	if err := db.Create(&attachment).Error; err != nil {
		t.Fatalf("attach inject %d: %v", injectID, err)
	}
	return &attachment
}

func createTestSession(t *testing.T, db *gorm.DB, scenarioID, ownerID uint) *models.Session {
	t.Helper()
	svc := NewSessionService(db)
	session, err := svc.CreateSession(scenarioID, ownerID, "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func timePtr(t time.Time) *time.Time { return &t }
