package main

import (
	"context"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/bot/receiver"
)

func newTelegramCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot (long polling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTelegram(cmd.Context(), *configPath)
		},
	}
}

func runTelegram(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Контекст, завершающийся по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	bot, err := newBotAPI(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("create bot api")
		return err
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("authorized")

	a, err := newApp(ctx, cfg, logger, staffNotifier(cfg, logger, bot))
	if err != nil {
		logger.Error().Err(err).Msg("app init")
		return err
	}
	defer a.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10
	updates := bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down bot")
		// Останавливаем лонг-поллинг -> канал updates закроется
		bot.StopReceivingUpdates()
	}()

	receiver.New(bot, a.engine, logger).Run(ctx, updates)
	logger.Info().Msg("bot stopped")
	return nil
}
