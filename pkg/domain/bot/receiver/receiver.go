package receiver

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/bot/receiver/keyboards"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/dialogue"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

// Bot is the part of *tgbotapi.BotAPI the receiver talks to.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Engine is the dialogue engine as seen by a transport.
type Engine interface {
	Advance(ctx context.Context, sessionID, utterance string) dialogue.Reply
	SetCustomer(sessionID string, c model.Customer)
}

type Receiver struct {
	bot    Bot
	engine Engine
	logger zerolog.Logger
}

func New(bot Bot, engine Engine, logger zerolog.Logger) *Receiver {
	return &Receiver{bot: bot, engine: engine, logger: logger}
}

// SessionID keys Telegram conversations by chat.
func SessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// Run consumes updates until the channel closes or ctx is done.
func (r *Receiver) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			r.Handle(ctx, update)
		}
	}
}

func (r *Receiver) Handle(ctx context.Context, update tgbotapi.Update) {
	if m := update.Message; m != nil {
		r.handleMessage(ctx, m)
		return
	}
	// Нажатия на inline-кнопки
	if cq := update.CallbackQuery; cq != nil {
		r.handleCallback(ctx, cq)
	}
}

func (r *Receiver) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	sid := SessionID(m.Chat.ID)

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			if m.From != nil {
				r.engine.SetCustomer(sid, model.Customer{Name: fullName(m.From)})
			}
			r.engine.Advance(ctx, sid, "start over")
			reply := r.engine.Advance(ctx, sid, "hello")
			r.send(m.Chat.ID, reply.Text, keyboards.MainMenu())
			return
		case "reset":
			reply := r.engine.Advance(ctx, sid, "start over")
			r.send(m.Chat.ID, reply.Text, keyboards.MainMenu())
			return
		}
	}

	if m.Text == "" {
		return
	}
	r.reply(ctx, m.Chat.ID, sid, m.Text)
}

func (r *Receiver) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Гасим "часики"
	defer func() {
		if _, err := r.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			r.logger.Warn().Err(err).Msg("answer callback failed")
		}
	}()

	if cq.Message == nil {
		return
	}
	text, ok := keyboards.Utterance(cq.Data)
	if !ok {
		r.logger.Warn().Str("data", cq.Data).Msg("unknown callback")
		return
	}
	r.reply(ctx, cq.Message.Chat.ID, SessionID(cq.Message.Chat.ID), text)
}

func (r *Receiver) reply(ctx context.Context, chatID int64, sid, text string) {
	reply := r.engine.Advance(ctx, sid, text)
	if kb, ok := keyboards.ForReply(reply); ok {
		r.send(chatID, reply.Text, kb)
		return
	}
	r.send(chatID, reply.Text, nil)
}

func (r *Receiver) send(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := r.bot.Send(msg); err != nil {
		r.logger.Warn().Err(err).Int64("chat", chatID).Msg("send reply failed")
	}
}

func fullName(u *tgbotapi.User) string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
