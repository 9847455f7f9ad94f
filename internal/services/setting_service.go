package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"supervisor_settings_backend/internal/models"
	"supervisor_settings_backend/internal/repositories"
	"supervisor_settings_backend/pkg/utils"
)

// --- Custom Service Errors for Settings ---
var (
	ErrSettingNotFound = errors.New("configuration setting not found")
	ErrValidation      = errors.New("validation error")
)

// --- DTOs ---

// UpsertSettingRequest creates a new configuration setting or replaces the
// value of an existing one by key.
type UpsertSettingRequest struct {
	SettingKey   string  `json:"setting_key" binding:"required"`
	SettingValue *string `json:"setting_value"`
	Category     *string `json:"category"`
	Description  *string `json:"description"`
}

// --- SettingService Interface ---
type SettingService interface {
	UpsertSetting(req UpsertSettingRequest) (*models.ConfigurationSetting, error)
	GetSettingByKey(key string) (*models.ConfigurationSetting, error)
	GetSettings(category *string) ([]models.ConfigurationSetting, error)
	DeleteSetting(key string) error
}

type settingService struct {
	settingRepo repositories.SettingRepository
	db          *sql.DB
}

// NewSettingService creates a new instance of SettingService.
func NewSettingService(repo repositories.SettingRepository, db *sql.DB) SettingService {
	return &settingService{settingRepo: repo, db: db}
}

func (s *settingService) UpsertSetting(req UpsertSettingRequest) (*models.ConfigurationSetting, error) {
	if utils.IsEmpty(req.SettingKey) {
		return nil, fmt.Errorf("%w: setting key cannot be empty", ErrValidation)
	}
	setting := &models.ConfigurationSetting{
		SettingKey:   strings.TrimSpace(req.SettingKey),
		SettingValue: req.SettingValue,
		Category:     req.Category,
		Description:  req.Description,
	}
	if err := s.settingRepo.Upsert(s.db, setting); err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	return setting, nil
}

func (s *settingService) GetSettingByKey(key string) (*models.ConfigurationSetting, error) {
	setting, err := s.settingRepo.GetByKey(key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting by key: %w", err)
	}
	return setting, nil
}

func (s *settingService) GetSettings(category *string) ([]models.ConfigurationSetting, error) {
	settings, err := s.settingRepo.List(category)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (s *settingService) DeleteSetting(key string) error {
	err := s.settingRepo.DeleteByKey(s.db, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}
