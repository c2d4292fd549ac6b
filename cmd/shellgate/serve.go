package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lin-Jiong-HDU/shellgate/internal/storage"
	"github.com/Lin-Jiong-HDU/shellgate/internal/transport/telegram"
	"github.com/spf13/cobra"
)

// getServeCommand returns the serve command
func getServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Long: `Poll Telegram for messages and run them against this host.

The token comes from TELEGRAM_BOT_TOKEN or telegram.token in the config file.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := storage.GetConfig()
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured, set TELEGRAM_BOT_TOKEN or telegram.token in ~/.shellgate/config.yaml")
	}

	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	api, err := telegram.NewAPI(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	bot := telegram.New(api, gw.dispatcher, telegram.Config{
		PollTimeout: cfg.Telegram.PollTimeout,
		MaxOutput:   cfg.Exec.MaxOutput,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatched := make(chan error, 1)
	go func() { dispatched <- gw.dispatcher.Run(ctx) }()

	err = bot.Start(ctx)
	stop()
	<-dispatched

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
