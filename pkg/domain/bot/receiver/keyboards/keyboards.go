package keyboards

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/dialogue"
)

// ---------- Callback keys ----------

const (
	CbStart    = "start"
	CbBook     = "book"
	CbMy       = "my"
	CbCancel   = "cancel"
	CbServices = "services"
	CbReset    = "reset"

	PSvc = "svc:" // svc:2 -> second service of the shown list
	PT   = "t:"   // t:3   -> third slot of the shown list
)

func Is(k, prefix string) (string, bool) {
	if strings.HasPrefix(k, prefix) {
		return strings.TrimPrefix(k, prefix), true
	}
	return "", false
}

// Utterance maps callback data back to the text the customer would have
// typed. Picks become their list number.
func Utterance(data string) (string, bool) {
	switch data {
	case CbStart:
		return "hello", true
	case CbBook:
		return "book an appointment", true
	case CbMy:
		return "check appointment", true
	case CbCancel:
		return "cancel appointment", true
	case CbServices:
		return "what services do you offer", true
	case CbReset:
		return "start over", true
	}
	for _, p := range []string{PSvc, PT} {
		if v, ok := Is(data, p); ok {
			if _, err := strconv.Atoi(v); err == nil {
				return v, true
			}
		}
	}
	return "", false
}

// ---------- UI builders ----------

const buttonsPerRow = 2

func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💅 Book", CbBook)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 My appointment", CbMy),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", CbCancel),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Services", CbServices)),
	)
}

func resetRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Start over", CbReset))
}

func grid(buttons []tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > 0 {
		n := min(buttonsPerRow, len(buttons))
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	rows = append(rows, resetRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ForReply renders the list a reply carries. ok is false when the reply
// has nothing to pick from. A catalog shown for browsing gets a single
// Book button since its numbers mean nothing outside a booking.
func ForReply(r dialogue.Reply) (tgbotapi.InlineKeyboardMarkup, bool) {
	switch r.Action {
	case dialogue.ActionDisplayServices:
		if len(r.Services) == 0 {
			return tgbotapi.InlineKeyboardMarkup{}, false
		}
		if r.Browse {
			return tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💅 Book", CbBook)),
			), true
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r.Services))
		for i, s := range r.Services {
			label := fmt.Sprintf("%s $%.0f", s.Name, s.Price())
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, PSvc+strconv.Itoa(i+1)))
		}
		return grid(buttons), true

	case dialogue.ActionDisplaySlots:
		if len(r.Slots) == 0 {
			return tgbotapi.InlineKeyboardMarkup{}, false
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r.Slots))
		for i, s := range r.Slots {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(s.StartTime.Format("15:04"), PT+strconv.Itoa(i+1)))
		}
		return grid(buttons), true
	}
	return tgbotapi.InlineKeyboardMarkup{}, false
}
