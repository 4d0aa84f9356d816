package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vedanttapdiya/vt-portfolio/internal/models"
)

// TelegramNotifier pings the site owner about accepted contact submissions.
// Strictly best-effort: a delivery failure never affects the submitter.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NotifyContact sends a short HTML summary. Fields are already sanitized by
// the contact service.
func (n *TelegramNotifier) NotifyContact(msg *models.ContactEmail) error {
	if n == nil || n.bot == nil {
		return nil
	}
	text := fmt.Sprintf(
		"<b>New contact form submission</b>\n<b>From:</b> %s %s (%s)\n\n%s",
		msg.FirstName, msg.LastName, msg.Email, msg.Message,
	)
	m := tgbotapi.NewMessage(n.chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.DisableWebPagePreview = true
	if _, err := n.bot.Send(m); err != nil {
		log.Printf("[telegram][notify] send failed: %v", err)
		return err
	}
	return nil
}
