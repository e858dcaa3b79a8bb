package sender

import (
	"context"
	"math"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

const attempts = 3

// Bot is the part of *tgbotapi.BotAPI the processor needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Processor posts staff notices to the configured channel.
type Processor struct {
	config ProcessorConfig
	logger zerolog.Logger

	bot     Bot
	backoff func(retry int) time.Duration
}

func New(config ProcessorConfig, logger zerolog.Logger, bot Bot) *Processor {
	return &Processor{
		config: config,
		logger: logger,
		bot:    bot,
		backoff: func(retry int) time.Duration {
			return time.Duration(math.Pow(2, float64(retry))) * time.Second
		},
	}
}

func (p *Processor) Send(ctx context.Context, text string) (int, error) {
	p.logger.Trace().Msg("In")
	defer p.logger.Trace().Msg("Out")

	msgToSend := tgbotapi.NewMessageToChannel(p.config.channelID, text)

	var err error
	var msg tgbotapi.Message

	for i := 0; i < attempts; i++ {
		msg, err = p.bot.Send(msgToSend)
		if err == nil {
			return msg.MessageID, nil
		}
		p.logger.Warn().Err(err).Int("retry", i+1).Msg("send failed, retrying")

		if i != 0 && i != attempts-1 {
			select {
			case <-ctx.Done():
				return 0, errs.New("failed to send message").Wrap(ctx.Err())
			case <-time.After(p.backoff(i)):
			}
		}
	}
	p.logger.Error().Err(err).Msg("send permanently failed")

	return 0, errs.Upstream("failed to send message").Wrap(err)
}

// Notify satisfies the dialogue engine's staff notifier.
func (p *Processor) Notify(ctx context.Context, text string) error {
	_, err := p.Send(ctx, text)
	return err
}
