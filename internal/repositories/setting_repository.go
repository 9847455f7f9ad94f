package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"supervisor_settings_backend/internal/models"

	"github.com/lib/pq"
)

// SettingRepository defines the interface for configuration setting database operations.
type SettingRepository interface {
	Upsert(executor SQLExecutor, setting *models.ConfigurationSetting) error
	GetByKey(key string) (*models.ConfigurationSetting, error)
	List(category *string) ([]models.ConfigurationSetting, error)
	DeleteByKey(executor SQLExecutor, key string) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Upsert(executor SQLExecutor, setting *models.ConfigurationSetting) error {
	query := `INSERT INTO configuration_settings (setting_key, setting_value, category, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (setting_key)
	          DO UPDATE SET setting_value = EXCLUDED.setting_value, category = EXCLUDED.category,
	                        description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
	          RETURNING id, setting_key, setting_value, category, description, created_at, updated_at`
	err := executor.QueryRow(query, setting.SettingKey, setting.SettingValue, setting.Category, setting.Description, time.Now()).
		Scan(&setting.ID, &setting.SettingKey, &setting.SettingValue, &setting.Category, &setting.Description, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: configuration setting key '%s' (constraint: %s)", ErrDuplicateKey, setting.SettingKey, pqErr.Constraint)
		}
		return fmt.Errorf("%w: upserting configuration setting '%s': %v", ErrDatabaseError, setting.SettingKey, err)
	}
	return nil
}

func (r *settingRepository) GetByKey(key string) (*models.ConfigurationSetting, error) {
	setting := &models.ConfigurationSetting{}
	query := `SELECT id, setting_key, setting_value, category, description, created_at, updated_at
	          FROM configuration_settings WHERE setting_key = $1`
	err := r.db.QueryRow(query, key).
		Scan(&setting.ID, &setting.SettingKey, &setting.SettingValue, &setting.Category, &setting.Description, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting configuration setting '%s': %v", ErrDatabaseError, key, err)
	}
	return setting, nil
}

func (r *settingRepository) List(category *string) ([]models.ConfigurationSetting, error) {
	settings := []models.ConfigurationSetting{}
	query := `SELECT id, setting_key, setting_value, category, description, created_at, updated_at
	          FROM configuration_settings`
	var args []interface{}
	if category != nil && *category != "" {
		query += " WHERE category = $1"
		args = append(args, *category)
	}
	query += " ORDER BY setting_key"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing configuration settings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var setting models.ConfigurationSetting
		if err := rows.Scan(&setting.ID, &setting.SettingKey, &setting.SettingValue, &setting.Category, &setting.Description, &setting.CreatedAt, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning configuration setting: %v", ErrDatabaseError, err)
		}
		settings = append(settings, setting)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating configuration settings: %v", ErrDatabaseError, err)
	}
	return settings, nil
}

func (r *settingRepository) DeleteByKey(executor SQLExecutor, key string) error {
	result, err := executor.Exec(`DELETE FROM configuration_settings WHERE setting_key = $1`, key)
	if err != nil {
		return fmt.Errorf("%w: deleting configuration setting '%s': %v", ErrDatabaseError, key, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
