package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"imobiliaria/server/internal/models"
)

const telegramSettingsKey = "telegram"

// GetTelegramConfig returns the stored notification configuration, or
// nil when none has been saved yet.
func (d *Database) GetTelegramConfig() (*models.TelegramConfig, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM settings WHERE key = ?", telegramSettingsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read telegram config: %v", err)
	}

	var config models.TelegramConfig
	if err := json.Unmarshal([]byte(value), &config); err != nil {
		return nil, fmt.Errorf("failed to parse telegram config: %v", err)
	}
	return &config, nil
}

func (d *Database) UpdateTelegramConfig(req *models.TelegramConfigRequest) error {
	config := models.TelegramConfig{
		BotToken:  req.BotToken,
		ChatID:    req.ChatID,
		IsEnabled: req.IsEnabled,
	}
	value, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram config: %v", err)
	}

	_, err = d.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, telegramSettingsKey, string(value))
	if err != nil {
		return fmt.Errorf("failed to save telegram config: %v", err)
	}
	return nil
}
