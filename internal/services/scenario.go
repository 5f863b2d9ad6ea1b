package services

import (
	"errors"

	"github.com/sossolinski/decisionary-app-sub000/internal/models"

	"gorm.io/gorm"
)

type ScenarioService struct {
	db *gorm.DB
}

func NewScenarioService(db *gorm.DB) *ScenarioService {
	return &ScenarioService{db: db}
}

type ScenarioInput struct {
	Title            string `json:"title" binding:"required,max=255"`
	Description      string `json:"description"`
	EventDate        string `json:"event_date"`
	EventTime        string `json:"event_time"`
	Timezone         string `json:"timezone"`
	Location         string `json:"location"`
	SituationType    string `json:"situation_type"`
	ShortDescription string `json:"short_description"`

	CasualtiesInjured    int `json:"casualties_injured"`
	CasualtiesFatalities int `json:"casualties_fatalities"`
	CasualtiesUninjured  int `json:"casualties_uninjured"`
	CasualtiesUnknown    int `json:"casualties_unknown"`
}

func validateCasualties(in *ScenarioInput) error {
	if in.CasualtiesInjured < 0 || in.CasualtiesFatalities < 0 ||
		in.CasualtiesUninjured < 0 || in.CasualtiesUnknown < 0 {
		return errors.New("casualty counts must be non-negative")
	}
	return nil
}

// CanEdit reports whether a user may mutate the scenario: the owner,
// or anyone holding a write share.
func (s *ScenarioService) CanEdit(scenarioID, userID uint) bool {
	var scenario models.Scenario
	if err := s.db.First(&scenario, scenarioID).Error; err != nil {
		return false
	}
	if scenario.OwnerID == userID {
		return true
	}
	var count int64
	s.db.Model(&models.ScenarioShare{}).
		Where("scenario_id = ? AND user_id = ? AND access = ?", scenarioID, userID, models.ShareAccessWrite).
		Count(&count)
	return count > 0
}

func (s *ScenarioService) CreateScenario(ownerID uint, in ScenarioInput) (*models.Scenario, error) {
	if err := validateCasualties(&in); err != nil {
		return nil, err
	}

	scenario := models.Scenario{
		OwnerID:              ownerID,
		Title:                in.Title,
		Description:          in.Description,
		EventDate:            in.EventDate,
		EventTime:            in.EventTime,
		Timezone:             in.Timezone,
		Location:             in.Location,
		SituationType:        in.SituationType,
		ShortDescription:     in.ShortDescription,
		CasualtiesInjured:    in.CasualtiesInjured,
		CasualtiesFatalities: in.CasualtiesFatalities,
		CasualtiesUninjured:  in.CasualtiesUninjured,
		CasualtiesUnknown:    in.CasualtiesUnknown,
		UpdatedBy:            ownerID,
	}
	if err := s.db.Create(&scenario).Error; err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *ScenarioService) GetScenario(scenarioID uint) (*models.Scenario, error) {
	var scenario models.Scenario
	if err := s.db.
		Preload("Injects", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Injects.Inject").
		Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&scenario, scenarioID).Error; err != nil {
		return nil, errors.New("scenario not found")
	}
	return &scenario, nil
}

// ListScenarios returns scenarios the user owns plus scenarios shared
// with them.
func (s *ScenarioService) ListScenarios(userID uint) ([]models.Scenario, error) {
	var scenarios []models.Scenario
	err := s.db.
		Where("owner_id = ? OR id IN (?)", userID,
			s.db.Model(&models.ScenarioShare{}).Select("scenario_id").Where("user_id = ?", userID)).
		Order("updated_at DESC").
		Find(&scenarios).Error
	if err != nil {
		return nil, err
	}
	return scenarios, nil
}

func (s *ScenarioService) UpdateScenario(scenarioID, userID uint, in ScenarioInput) (*models.Scenario, error) {
	if err := validateCasualties(&in); err != nil {
		return nil, err
	}

	var scenario models.Scenario
	if err := s.db.First(&scenario, scenarioID).Error; err != nil {
		return nil, errors.New("scenario not found")
	}
	if !s.CanEdit(scenarioID, userID) {
		return nil, errors.New("no write access to scenario")
	}

	scenario.Title = in.Title
	scenario.Description = in.Description
	scenario.EventDate = in.EventDate
	scenario.EventTime = in.EventTime
	scenario.Timezone = in.Timezone
	scenario.Location = in.Location
	scenario.SituationType = in.SituationType
	scenario.ShortDescription = in.ShortDescription
	scenario.CasualtiesInjured = in.CasualtiesInjured
	scenario.CasualtiesFatalities = in.CasualtiesFatalities
	scenario.CasualtiesUninjured = in.CasualtiesUninjured
	scenario.CasualtiesUnknown = in.CasualtiesUnknown
	scenario.UpdatedBy = userID

	if err := s.db.Save(&scenario).Error; err != nil {
		return nil, err
	}
	return &scenario, nil
}

// DeleteScenario removes the scenario and cascades to its attachments,
// roles and shares. Underlying injects are untouched.
func (s *ScenarioService) DeleteScenario(scenarioID, userID uint) error {
	var scenario models.Scenario
	if err := s.db.Where("id = ? AND owner_id = ?", scenarioID, userID).First(&scenario).Error; err != nil {
		return errors.New("scenario not found")
	}

	s.db.Where("scenario_id = ?", scenarioID).Delete(&models.ScenarioInject{})
	s.db.Where("scenario_id = ?", scenarioID).Delete(&models.ScenarioRole{})
	s.db.Where("scenario_id = ?", scenarioID).Delete(&models.ScenarioShare{})
	return s.db.Delete(&scenario).Error
}

func (s *ScenarioService) ShareScenario(scenarioID, ownerID uint, username, access string) (*models.ScenarioShare, error) {
	if access != models.ShareAccessRead && access != models.ShareAccessWrite {
		return nil, errors.New("access must be read or write")
	}

	var scenario models.Scenario
	if err := s.db.Where("id = ? AND owner_id = ?", scenarioID, ownerID).First(&scenario).Error; err != nil {
		return nil, errors.New("scenario not found")
	}

	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, errors.New("user not found")
	}
	if user.ID == ownerID {
		return nil, errors.New("cannot share a scenario with its owner")
	}

	var existing models.ScenarioShare
	if err := s.db.Where("scenario_id = ? AND user_id = ?", scenarioID, user.ID).
		First(&existing).Error; err == nil {
		existing.Access = access
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	share := models.ScenarioShare{
		ScenarioID: scenarioID,
		UserID:     user.ID,
		Access:     access,
	}
	if err := s.db.Create(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

func (s *ScenarioService) RevokeShare(scenarioID, ownerID, shareID uint) error {
	var scenario models.Scenario
	if err := s.db.Where("id = ? AND owner_id = ?", scenarioID, ownerID).First(&scenario).Error; err != nil {
		return errors.New("scenario not found")
	}
	return s.db.Where("id = ? AND scenario_id = ?", shareID, scenarioID).
		Delete(&models.ScenarioShare{}).Error
}

type RoleInput struct {
	Key         string `json:"key" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	SortOrder   int    `json:"sort_order"`
}

func (s *ScenarioService) CreateRole(scenarioID, userID uint, in RoleInput) (*models.ScenarioRole, error) {
	if !s.CanEdit(scenarioID, userID) {
		return nil, errors.New("no write access to scenario")
	}

	role := models.ScenarioRole{
		ScenarioID:  scenarioID,
		Key:         in.Key,
		Name:        in.Name,
		Description: in.Description,
		Required:    in.Required,
		SortOrder:   in.SortOrder,
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *ScenarioService) UpdateRole(roleID, userID uint, in RoleInput) (*models.ScenarioRole, error) {
	var role models.ScenarioRole
	if err := s.db.First(&role, roleID).Error; err != nil {
		return nil, errors.New("role not found")
	}
	if !s.CanEdit(role.ScenarioID, userID) {
		return nil, errors.New("no write access to scenario")
	}

	role.Key = in.Key
	role.Name = in.Name
	role.Description = in.Description
	role.Required = in.Required
	role.SortOrder = in.SortOrder

	if err := s.db.Save(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *ScenarioService) DeleteRole(roleID, userID uint) error {
	var role models.ScenarioRole
	if err := s.db.First(&role, roleID).Error; err != nil {
		return errors.New("role not found")
	}
	if !s.CanEdit(role.ScenarioID, userID) {
		return errors.New("no write access to scenario")
	}
	return s.db.Delete(&role).Error
}

func (s *ScenarioService) ListRoles(scenarioID uint) ([]models.ScenarioRole, error) {
	var roles []models.ScenarioRole
	if err := s.db.Where("scenario_id = ?", scenarioID).
		Order("sort_order ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
