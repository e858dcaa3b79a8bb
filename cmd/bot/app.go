package main

import (
	"context"
	"io"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/bot/receiver/config"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/bot/sender"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/dialogue"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/session"
	"github.com/WETTENTLLC/DelaneNails/pkg/observability/metrics"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/memory"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/store"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/transcript"
	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

// app holds everything the subcommands share.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	engine   *dialogue.Engine
	store    *session.MemoryStore
	janitor  *session.Janitor
	recorder *transcript.RedisRecorder
	registry *prometheus.Registry
	closers  []func()
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), errs.New("failed to load config").Wrap(err)
	}
	return cfg, newLogger(os.Stderr, cfg.LogLevel), nil
}

// newApp wires the dialogue engine. notifier may be nil.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, notifier dialogue.Notifier) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, store: session.NewMemoryStore(), registry: prometheus.NewRegistry()}

	// 1) Бэкенд записи
	var backend model.Collaborator
	if cfg.UseMockCatalog {
		backend = memory.NewCatalog(loc)
		logger.Info().Msg("using in-memory demo catalog")
	} else {
		repo, err := store.NewRepo(ctx, cfg.PostgreAddr, loc)
		if err != nil {
			return nil, errs.Upstream("failed to connect to postgres").Wrap(err)
		}
		a.closers = append(a.closers, repo.Close)
		backend = repo
	}

	// 2) Журнал реплик (необязательно)
	var recorder dialogue.TurnRecorder
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, transcripts disabled")
			_ = client.Close()
		} else {
			a.recorder, err = transcript.NewRedisRecorder(client, transcript.DefaultTTL, nil)
			if err != nil {
				return nil, err
			}
			recorder = a.recorder
			a.closers = append(a.closers, func() { _ = client.Close() })
		}
	}

	a.engine, err = dialogue.New(dialogue.Options{
		Store:          a.store,
		Backend:        backend,
		Logger:         logger,
		Notifier:       notifier,
		Recorder:       recorder,
		Metrics:        metrics.NewDialogueMetrics(a.registry),
		BackendTimeout: cfg.CollaboratorTimeout,
		MaxSlotsShown:  cfg.MaxSlotsShown,
		BusinessName:   cfg.BusinessName,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	// Уведомления персоналу уходят в фоне
	if q, ok := notifier.(*sender.Queue); ok {
		runCtx, cancel := context.WithCancel(context.Background())
		go q.Run(runCtx)
		a.closers = append(a.closers, func() {
			cancel()
			<-q.Done()
		})
	}

	// 3) Чистка неактивных сессий
	a.janitor = session.NewJanitor(a.store, cfg.SessionTTL, cfg.JanitorSpec, logger)
	if err := a.janitor.Start(); err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.janitor.Stop)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// staffNotifier posts to the staff channel when one is configured. Notices
// are queued and delivered by a worker newApp starts.
func staffNotifier(cfg *config.Config, logger zerolog.Logger, bot sender.Bot) dialogue.Notifier {
	if bot == nil || cfg.ChannelID == "" {
		return nil
	}
	pc, err := sender.NewProcessorConfig(cfg.BotToken, cfg.ChannelID)
	if err != nil {
		logger.Warn().Err(err).Msg("staff notifications disabled")
		return nil
	}
	return sender.NewQueue(sender.New(pc, logger, bot), logger, sender.DefaultQueueSize, sender.DefaultSendTimeout)
}

func newBotAPI(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	if cfg.BotToken == "" {
		return nil, errs.New("TG_TOKEN is not set")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errs.Upstream("failed to create bot api").Wrap(err)
	}
	bot.Debug = false
	return bot, nil
}
