package sender

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

type flakyBot struct {
	failures int
	calls    int
	last     tgbotapi.MessageConfig
}

func (b *flakyBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.calls++
	b.last = c.(tgbotapi.MessageConfig)
	if b.calls <= b.failures {
		return tgbotapi.Message{}, errors.New("telegram: too many requests")
	}
	return tgbotapi.Message{MessageID: 99}, nil
}

func newProcessor(t *testing.T, bot Bot) *Processor {
	t.Helper()
	cfg, err := NewProcessorConfig("token", "@staff")
	require.NoError(t, err)
	p := New(cfg, zerolog.Nop(), bot)
	p.backoff = func(int) time.Duration { return time.Millisecond }
	return p
}

func TestSendRetries(t *testing.T) {
	bot := &flakyBot{failures: 2}
	id, err := newProcessor(t, bot).Send(context.Background(), "New booking")
	require.NoError(t, err)
	assert.Equal(t, 99, id)
	assert.Equal(t, 3, bot.calls)
	assert.Equal(t, "@staff", bot.last.ChannelUsername)
	assert.Equal(t, "New booking", bot.last.Text)
}

func TestSendGivesUp(t *testing.T) {
	bot := &flakyBot{failures: 10}
	err := newProcessor(t, bot).Notify(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))
	assert.Equal(t, attempts, bot.calls)
}

func TestSendStopsOnCanceledContext(t *testing.T) {
	bot := &flakyBot{failures: 10}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newProcessor(t, bot)
	p.backoff = func(int) time.Duration { return time.Hour }

	_, err := p.Send(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, bot.calls)
}

func TestProcessorConfig(t *testing.T) {
	_, err := NewProcessorConfig("", "@staff")
	assert.Error(t, err)
	_, err = NewProcessorConfig("token", "")
	assert.Error(t, err)

	t.Setenv("TG_TOKEN", "tok")
	t.Setenv("TG_CHANNEL_ID", "@chan")
	var cfg ProcessorConfig
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "@chan", cfg.ChannelID())
}
