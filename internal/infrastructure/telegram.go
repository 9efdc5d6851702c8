package infrastructure

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramClient struct {
	Bot *tgbotapi.BotAPI
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramClient{Bot: bot}, nil
}

func (t *TelegramClient) SendMessage(chatID int64, content string) error {
	msg := tgbotapi.NewMessage(chatID, content)
	_, err := t.Bot.Send(msg)
	return err
}

// Username returns the bot's own @name, used to build referral links.
func (t *TelegramClient) Username() string {
	return t.Bot.Self.UserName
}
