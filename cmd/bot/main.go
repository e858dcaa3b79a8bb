package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/bot/receiver/config"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "delane-bot",
		Short:        "Delane Nails booking assistant",
		Long:         "Conversational booking assistant for Delane Nails, served over Telegram, HTTP or a local REPL.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to app.yml")

	cmd.AddCommand(newTelegramCmd(&configPath))
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newReplCmd(&configPath))
	return cmd
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
