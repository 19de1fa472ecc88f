package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/platform"
)

// Bot commands answered with the welcome notice
const (
	CommandStart = "start"
	CommandHelp  = "help"
)

// updateKind classifies an inbound update
type updateKind int

const (
	kindIgnored updateKind = iota
	kindWelcome
	kindSubmission
	kindCallback
)

// classify decides how an update is handled
func classify(u tgbotapi.Update) updateKind {
	if u.CallbackQuery != nil {
		if u.CallbackQuery.From == nil {
			return kindIgnored
		}
		return kindCallback
	}

	msg := u.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return kindIgnored
	}
	if msg.IsCommand() {
		switch msg.Command() {
		case CommandStart, CommandHelp:
			return kindWelcome
		}
		return kindIgnored
	}
	if _, ok := platform.ExtractURL(msg.Text); ok {
		return kindSubmission
	}
	return kindIgnored
}

// submissionFrom extracts the first URL of a text message
func submissionFrom(msg *tgbotapi.Message) (model.Submission, bool) {
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return model.Submission{}, false
	}
	url, ok := platform.ExtractURL(msg.Text)
	if !ok {
		return model.Submission{}, false
	}
	return model.Submission{
		OwnerID: msg.From.ID,
		ChatID:  msg.Chat.ID,
		URL:     strings.TrimSpace(url),
	}, true
}

// callbackFrom maps a button press
func callbackFrom(q *tgbotapi.CallbackQuery) (model.Callback, bool) {
	if q == nil || q.From == nil {
		return model.Callback{}, false
	}

	cb := model.Callback{
		ID:       q.ID,
		CallerID: q.From.ID,
		ChatID:   q.From.ID,
		Data:     q.Data,
	}
	if q.Message != nil {
		cb.MessageID = q.Message.MessageID
		if q.Message.Chat != nil {
			cb.ChatID = q.Message.Chat.ID
		}
	}
	return cb, true
}

// keyboard lays out one button per row
func keyboard(buttons []model.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
