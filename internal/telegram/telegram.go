package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"imobiliaria/server/internal/models"
)

// Service sends broker notifications through the Telegram Bot API.
// Disabled or unconfigured services silently drop messages.
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config *models.TelegramConfig
}

func NewService(logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Service) UpdateConfig(config *models.TelegramConfig) {
	s.config = config
}

// SendMessage sends a message to the configured Telegram chat.
func (s *Service) SendMessage(message string) error {
	if s.config == nil || !s.config.IsEnabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyNewLead tells the broker about a freshly captured lead.
func (s *Service) NotifyNewLead(lead *models.Lead) error {
	if s.config == nil || !s.config.IsEnabled {
		return nil
	}

	var leadKind string
	switch lead.Type {
	case "gate":
		leadKind = "🔓 Conteúdo exclusivo"
	case "whatsapp":
		leadKind = "💬 WhatsApp"
	default:
		leadKind = "📞 Contato"
	}

	message := fmt.Sprintf(
		"<b>Novo lead capturado!</b>\n\n"+
			"👤 %s\n"+
			"📱 %s\n"+
			"🏷️ %s",
		lead.Name,
		lead.Phone,
		leadKind,
	)

	if lead.PropertyTitle != "" {
		message += fmt.Sprintf("\n🏠 %s", lead.PropertyTitle)
	}

	return s.SendMessage(message)
}
