package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// callback data longer than this is rejected by telegram
const maxCallbackData = 64

type inlineKeyboard struct {
	rows             [][]tgbotapi.InlineKeyboardButton
	maxButtonsPerRow int
}

func newInlineKeyboard(maxButtonsPerRow int) *inlineKeyboard {
	return &inlineKeyboard{
		rows:             make([][]tgbotapi.InlineKeyboardButton, 0),
		maxButtonsPerRow: maxButtonsPerRow,
	}
}

// addButton appends a button, silently skipping it when data does not fit in
// a callback query.
func (k *inlineKeyboard) addButton(text, data string) {
	if len(data) > maxCallbackData {
		return
	}

	if len(k.rows) == 0 || len(k.rows[len(k.rows)-1]) == k.maxButtonsPerRow {
		k.rows = append(k.rows, []tgbotapi.InlineKeyboardButton{})
	}

	last := len(k.rows) - 1
	k.rows[last] = append(k.rows[last], tgbotapi.NewInlineKeyboardButtonData(text, data))
}

func (k *inlineKeyboard) markup() *tgbotapi.InlineKeyboardMarkup {
	if len(k.rows) == 0 {
		return nil
	}
	return &tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: k.rows,
	}
}
