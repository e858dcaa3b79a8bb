package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/dialogue"
)

const replSession = "repl"

func newReplCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat with the assistant on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			return runRepl(ctx, a.engine, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

type advancer interface {
	Advance(ctx context.Context, sessionID, utterance string) dialogue.Reply
}

// runRepl feeds stdin lines to the engine until EOF or a goodbye command.
func runRepl(ctx context.Context, engine advancer, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, engine.Advance(ctx, replSession, "hello").Text)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reply := engine.Advance(ctx, replSession, line)
		fmt.Fprintln(out, reply.Text)

		switch strings.ToLower(line) {
		case "exit", "quit", "bye":
			return nil
		}
	}
}
