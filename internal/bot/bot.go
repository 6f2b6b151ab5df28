// Package bot is the Telegram transport: command handling, access gating,
// and training reminders.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/majowuji/wuji/internal/config"
	"github.com/majowuji/wuji/internal/metrics"
	"github.com/majowuji/wuji/internal/models"
	"github.com/majowuji/wuji/internal/storage"
)

// Bot wraps the Telegram API with the training engine behind it.
type Bot struct {
	api *tgbotapi.BotAPI
	db  *storage.DB
	cfg *config.Config
	loc *time.Location
	m   *metrics.Metrics
	log *slog.Logger

	// written only from the reminder cron goroutine
	remindedOn map[int64]time.Time
}

// New creates a Bot. The timezone must match the one the engine buckets
// days in.
func New(api *tgbotapi.BotAPI, db *storage.DB, cfg *config.Config, loc *time.Location, m *metrics.Metrics, log *slog.Logger) *Bot {
	return &Bot{api: api, db: db, cfg: cfg, loc: loc, m: m, log: log,
		remindedOn: make(map[int64]time.Time)}
}

// Start runs the long-polling update loop until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	if b.cfg.Reminders.Enabled {
		b.startReminders(ctx)
	}

	b.log.Info("bot started", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

// userFor resolves the sender to a stored user, enforcing the seat limit.
// A rejected stranger gets a polite refusal and the owner a notification;
// the returned ok is false in that case.
func (b *Bot) userFor(ctx context.Context, msg *tgbotapi.Message) (models.User, bool) {
	chatID := msg.Chat.ID

	known, err := b.db.HasUser(ctx, chatID)
	if err != nil {
		b.log.Error("checking user", "error", err)
		return models.User{}, false
	}
	if !known {
		count, err := b.db.CountUsers(ctx)
		if err != nil {
			b.log.Error("counting users", "error", err)
			return models.User{}, false
		}
		if count >= b.cfg.Telegram.SeatLimit {
			b.reply(chatID, "Свободных мест нет. Владелец бота получил уведомление.")
			b.notifyOwner(ctx, fmt.Sprintf("Запрос доступа: %s (@%s), chat %d. Мест нет.",
				msg.From.FirstName, msg.From.UserName, chatID))
			return models.User{}, false
		}
	}

	user, created, err := b.db.GetOrCreateUser(ctx, chatID, msg.From.UserName, msg.From.FirstName)
	if err != nil {
		b.log.Error("resolving user", "error", err)
		return models.User{}, false
	}
	if created && !user.IsOwner {
		b.notifyOwner(ctx, fmt.Sprintf("Новый пользователь: %s (@%s).",
			msg.From.FirstName, msg.From.UserName))
	}
	return user, true
}

func (b *Bot) notifyOwner(ctx context.Context, text string) {
	owner, err := b.db.Owner(ctx)
	if err != nil {
		b.log.Warn("owner lookup failed", "error", err)
		return
	}
	b.reply(owner.ChatID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("sending message", "chat", chatID, "error", err)
	}
}
