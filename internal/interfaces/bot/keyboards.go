package bot

import (
	"fmt"

	"orderbot/internal/usecases"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Main menu button labels. The text router matches on these exactly.
const (
	BtnOrder   = "🛒 Place Order"
	BtnPartner = "📊 Partner Program"
	BtnOrders  = "📋 My Orders"
	BtnHelp    = "🆘 Help"
	BtnCancel  = "❌ Cancel"
)

// MainKeyboard is the persistent reply menu shown outside the order form.
func MainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnOrder),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnPartner),
			tgbotapi.NewKeyboardButton(BtnOrders),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// CancelKeyboard replaces the menu during form steps that take free text.
func CancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// BotTypeKeyboard lists the closed set of bot types plus a cancel button.
func BotTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(usecases.BotTypeOptions)+1)
	for _, opt := range usecases.BotTypeOptions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.Label, opt.Key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(BtnCancel, "cancel"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ReferralKeyboard offers the copy-link button on the partner screen.
func ReferralKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Copy referral link", fmt.Sprintf("copy_ref_%d", userID)),
		),
	)
}
