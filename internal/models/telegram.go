package models

// TelegramConfig is the stored notification configuration. When enabled,
// the broker receives a Telegram message for every captured lead.
type TelegramConfig struct {
	BotToken  string `json:"bot_token"`
	ChatID    string `json:"chat_id"`
	IsEnabled bool   `json:"is_enabled"`
}

type TelegramConfigRequest struct {
	BotToken  string `json:"bot_token" binding:"required"`
	ChatID    string `json:"chat_id" binding:"required"`
	IsEnabled bool   `json:"is_enabled"`
}
