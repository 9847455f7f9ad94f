package models

import "time"

// ConfigurationSetting represents a key-value configuration entry for the
// supervisor. Keys are unique; the value may be a scalar or a JSON document
// stored as text.
type ConfigurationSetting struct {
	ID           int64     `json:"id" db:"id"`
	SettingKey   string    `json:"setting_key" db:"setting_key" binding:"required"`
	SettingValue *string   `json:"setting_value,omitempty" db:"setting_value"`
	Category     *string   `json:"category,omitempty" db:"category"`
	Description  *string   `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
