package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"

	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/tips"
)

// startReminders schedules an hourly check that nudges users who have not
// trained today. Messages go out only inside the configured local-time
// window so nobody gets pinged at night.
func (b *Bot) startReminders(ctx context.Context) {
	c := cron.New()
	c.AddFunc("@hourly", func() {
		b.sendReminders(ctx)
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	b.log.Info("reminders scheduled", "start_hour", b.cfg.Reminders.StartHour, "end_hour", b.cfg.Reminders.EndHour)
}

func (b *Bot) sendReminders(ctx context.Context) {
	now := time.Now().In(b.loc)
	if now.Hour() < b.cfg.Reminders.StartHour || now.Hour() >= b.cfg.Reminders.EndHour {
		return
	}

	users, err := b.db.ListUsers(ctx)
	if err != nil {
		b.log.Error("listing users for reminders", "error", err)
		return
	}
	lastDates, err := b.db.LastTrainingDates(ctx)
	if err != nil {
		b.log.Error("last training dates", "error", err)
		return
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, b.loc)
	for _, u := range users {
		last, trained := lastDates[u.ID]
		if trained && !last.In(b.loc).Before(today) {
			continue
		}
		// One nudge per day is enough.
		if sent, ok := b.remindedOn[u.ID]; ok && sent.Equal(today) {
			continue
		}
		b.remindedOn[u.ID] = today
		b.reply(u.ChatID, b.reminderText(ctx, u.ID))
		b.m.RemindersSent.Inc()
	}
}

// reminderText builds the nudge: the current recommendation when it can be
// computed, a generic prompt otherwise, plus a training tip.
func (b *Bot) reminderText(ctx context.Context, userID int64) string {
	text := "Сегодня ещё не было тренировки. /rec подскажет, с чего начать."

	records, err := b.db.RecordStates(ctx, userID)
	if err == nil {
		logs, lerr := b.db.ListTrainings(ctx, userID)
		if lerr == nil {
			if d, rerr := engine.Recommend(records, logs, time.Now().In(b.loc), b.loc); rerr == nil && !d.BonusOffer {
				text = fmt.Sprintf("Сегодня ещё не было тренировки. Начни с: %s.", d.Exercise.Name)
			}
		}
	}

	return text + "\n\n💡 " + tips.Random()
}
