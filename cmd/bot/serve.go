package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/dialogue"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/web"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP chat API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: http_port from config)")
	return cmd
}

func runServe(ctx context.Context, configPath string, port int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.HTTPPort
	}

	var notifier dialogue.Notifier
	if cfg.BotToken != "" && cfg.ChannelID != "" {
		bot, err := newBotAPI(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("staff notifications disabled")
		} else {
			notifier = staffNotifier(cfg, logger, bot)
		}
	}

	a, err := newApp(ctx, cfg, logger, notifier)
	if err != nil {
		logger.Error().Err(err).Msg("app init")
		return err
	}
	defer a.Close()

	routerCfg := web.Config{
		Engine:         a.engine,
		Logger:         logger,
		MetricsHandler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
	}
	if a.recorder != nil {
		routerCfg.History = a.recorder
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           web.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", port).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
			return err
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("graceful shutdown failed")
		}
	}
	return nil
}
