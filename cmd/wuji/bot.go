package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/majowuji/wuji/internal/bot"
	"github.com/majowuji/wuji/internal/metrics"
)

func newBotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			log.Info("wuji bot starting", "version", Version)

			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if cfg.Telegram.Token == "" {
				return errors.New("telegram token is not configured")
			}

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
			if err != nil {
				return err
			}
			log.Info("telegram authorized", "bot", api.Self.UserName)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b := bot.New(api, db, cfg, loc, metrics.New(), log)
			if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("bot stopped")
			return nil
		},
	}
}
