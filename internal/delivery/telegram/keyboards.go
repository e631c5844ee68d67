package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// contactKeyboard one-tap phone share button.
func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	btn := tgbotapi.NewKeyboardButtonContact("📞 Поділитись контактом")
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(btn))
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}
