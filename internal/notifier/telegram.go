// Package notifier pushes moderation events to reviewers over Telegram.
package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"shieldbackend/internal/models"
)

// TelegramNotifier sends reviewer notifications to a fixed chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier authorizes the bot once at startup.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	logger.Info("Telegram notifier authorized", zap.String("bot", bot.Self.UserName))
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// FeedbackSubmitted tells reviewers a correction is waiting for review.
func (n *TelegramNotifier) FeedbackSubmitted(fb *models.Feedback) error {
	text := fmt.Sprintf(
		"New feedback #%d awaiting review\nScan kind: %s\nOriginal: %s\nCorrected: %s\nType: %s",
		fb.ID, fb.ScanKind, fb.OriginalPrediction, fb.CorrectedLabel, fb.FeedbackType,
	)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
