package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
)

// TelegramNotifier pushes alert notifications to a Telegram chat through the
// Bot API.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegram creates a TelegramNotifier.
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Alert bot authorized", zap.String("username", bot.Self.UserName))
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Notify sends one message per alert. The leaked value itself is never
// included, only its category and severity.
func (n *TelegramNotifier) Notify(_ context.Context, alert *models.Alert, leak *models.Leak) error {
	text := fmt.Sprintf("⚠️ %s\n%s\nSeverity: %s\nSource: %s",
		alert.Title, alert.Body, leak.Severity, leak.SourceURL)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send alert message: %w", err)
	}
	return nil
}
