package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"imobiliaria/server/internal/models"
	"imobiliaria/server/internal/telegram"
)

// GetNotificationConfig returns the current Telegram configuration with
// the bot token masked.
func (h *Handler) GetNotificationConfig(c *gin.Context) {
	config, err := h.db.GetTelegramConfig()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notification config"})
		return
	}

	if config == nil {
		c.JSON(http.StatusOK, gin.H{
			"is_enabled": false,
			"chat_id":    "",
			"bot_token":  "",
		})
		return
	}

	if len(config.BotToken) > 4 {
		config.BotToken = "••••" + config.BotToken[len(config.BotToken)-4:]
	}
	c.JSON(http.StatusOK, config)
}

// UpdateNotificationConfig validates, test-sends and stores a new
// Telegram configuration, then applies it to the live notifier.
func (h *Handler) UpdateNotificationConfig(c *gin.Context) {
	var request models.TelegramConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Error("Invalid notification config body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(request.BotToken) < 20 || !strings.Contains(request.BotToken, ":") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bot token format. Please check your bot token from @BotFather"})
		return
	}

	if request.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID is required"})
		return
	}

	// Prove the configuration works before persisting it
	testService := telegram.NewService(h.logger)
	testService.UpdateConfig(&models.TelegramConfig{
		BotToken:  request.BotToken,
		ChatID:    request.ChatID,
		IsEnabled: true,
	})
	if err := testService.SendMessage("🔔 Notificações configuradas com sucesso!"); err != nil {
		h.logger.WithError(err).Error("Failed to send test message")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.UpdateTelegramConfig(&request); err != nil {
		h.logger.WithError(err).Error("Failed to update Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration"})
		return
	}

	if h.notifier != nil {
		if config, err := h.db.GetTelegramConfig(); err == nil && config != nil {
			h.notifier.UpdateConfig(config)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification configuration updated successfully"})
}
