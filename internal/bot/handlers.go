package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
	"github.com/majowuji/wuji/internal/tips"
)

const (
	commandStart   = "start"
	commandHelp    = "help"
	commandLog     = "log"
	commandToday   = "today"
	commandRec     = "rec"
	commandGoal    = "goal"
	commandBalance = "balance"
	commandRecord  = "record"
	commandStats   = "stats"
	commandTip     = "tip"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := b.userFor(ctx, msg)
	if !ok {
		return
	}
	b.m.BotUpdates.WithLabelValues(msg.Command()).Inc()

	switch msg.Command() {
	case commandStart:
		b.reply(user.ChatID, fmt.Sprintf("Привет, %s!\n\n%s", user.FirstName, helpText()))
	case commandHelp:
		b.reply(user.ChatID, helpText())
	case commandLog:
		b.handleLog(ctx, user, msg.CommandArguments())
	case commandToday:
		b.handleToday(ctx, user)
	case commandRec:
		b.handleRecommend(ctx, user)
	case commandGoal:
		b.handleGoal(ctx, user, msg.CommandArguments())
	case commandBalance:
		b.handleBalance(ctx, user)
	case commandRecord:
		b.handleRecords(ctx, user)
	case commandStats:
		b.handleStats(ctx, user, msg.CommandArguments())
	case commandTip:
		b.reply(user.ChatID, "📖 "+tips.Random())
	default:
		b.reply(user.ChatID, "Не знаю такой команды. /help покажет, что я умею.")
	}
}

// handleLog parses "/log <упражнение> <результат> [пульс_до пульс_после]".
// The result is reps for rep-based exercises and seconds for timed ones.
func (b *Bot) handleLog(ctx context.Context, user models.User, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.reply(user.ChatID, "Формат: /log <упражнение> <результат> [пульс до] [пульс после]\n\n"+exerciseList())
		return
	}

	ex, ok := findExercise(fields[0])
	if !ok {
		b.reply(user.ChatID, "Не знаю упражнение «"+fields[0]+"».\n\n"+exerciseList())
		return
	}
	value, err := strconv.Atoi(fields[1])
	if err != nil {
		b.reply(user.ChatID, "Результат должен быть числом: «"+fields[1]+"».")
		return
	}

	entry := models.Training{
		UserID:   user.ID,
		Exercise: ex.Key,
		Date:     time.Now().In(b.loc),
	}
	if ex.Timed() {
		entry.DurationSec = &value
	} else {
		entry.Reps = value
	}
	if len(fields) >= 4 {
		if before, err := strconv.Atoi(fields[2]); err == nil {
			entry.PulseBefore = &before
		}
		if after, err := strconv.Atoi(fields[3]); err == nil {
			entry.PulseAfter = &after
		}
	}

	tag, st, err := b.db.LogAttempt(ctx, &entry, b.loc)
	if err != nil {
		var invalid *engine.InvalidInputError
		if errors.As(err, &invalid) {
			b.reply(user.ChatID, "Так не получится: "+invalid.Reason)
			return
		}
		b.log.Error("log attempt", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Что-то сломалось, запись не сохранена.")
		return
	}
	b.m.TrainingsLogged.WithLabelValues(ex.Key).Inc()
	b.m.RecordTransitions.WithLabelValues(ex.Key, string(tag)).Inc()

	b.reply(user.ChatID, formatTransition(tag, st, ex, b.loc))
}

func (b *Bot) handleToday(ctx context.Context, user models.User) {
	logs, err := b.db.ListTrainings(ctx, user.ID)
	if err != nil {
		b.log.Error("listing trainings", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать журнал.")
		return
	}
	b.reply(user.ChatID, formatToday(logs, time.Now().In(b.loc), b.loc))
}

func (b *Bot) handleRecommend(ctx context.Context, user models.User) {
	logs, err := b.db.ListTrainings(ctx, user.ID)
	if err != nil {
		b.log.Error("listing trainings", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать журнал.")
		return
	}
	records, err := b.db.RecordStates(ctx, user.ID)
	if err != nil {
		b.log.Error("loading records", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать рекорды.")
		return
	}

	decision, err := engine.Recommend(records, logs, time.Now().In(b.loc), b.loc)
	if err != nil {
		b.log.Error("recommend", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог выбрать упражнение.")
		return
	}
	b.m.Recommendations.WithLabelValues(string(decision.Exercise.Role)).Inc()

	text := formatDecision(decision)
	msg := tgbotapi.NewMessage(user.ChatID, text)
	if decision.BonusOffer {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Беру бонус 💪", "bonus:"+decision.Exercise.Key),
				tgbotapi.NewInlineKeyboardButtonData("Хватит на сегодня", "bonus:done"),
			),
		)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("sending recommendation", "chat", user.ChatID, "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn("callback ack", "error", err)
		}
	}()

	data := cb.Data
	if !strings.HasPrefix(data, "bonus:") {
		return
	}
	chatID := cb.Message.Chat.ID

	key := strings.TrimPrefix(data, "bonus:")
	if key == "done" {
		b.reply(chatID, "Отличная работа, базовая программа закрыта. До завтра!")
		return
	}
	ex, ok := catalog.Find(key)
	if !ok {
		return
	}
	unit := "повторений"
	if ex.Timed() {
		unit = "секунд"
	}
	b.reply(chatID, fmt.Sprintf("%s. Сделай сколько получится и запиши:\n/log %s <%s>", ex.Name, ex.Key, unit))
}

func (b *Bot) handleGoal(ctx context.Context, user models.User, args string) {
	key := strings.TrimSpace(args)
	if key == "" {
		b.reply(user.ChatID, "Формат: /goal <упражнение>\n\n"+exerciseList())
		return
	}
	ex, ok := findExercise(key)
	if !ok {
		b.reply(user.ChatID, "Не знаю упражнение «"+key+"».")
		return
	}

	row, err := b.db.GetRecordRow(ctx, user.ID, ex.Key)
	if err != nil {
		b.log.Error("record row", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать рекорд.")
		return
	}
	st, err := engine.StateFromRow(row)
	if err != nil {
		b.log.Error("decoding record", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Запись рекорда повреждена, сообщите владельцу.")
		return
	}
	if _, ok := engine.RecordValue(st); !ok {
		b.reply(user.ChatID, ex.Name+": рекорда пока нет. Первый результат станет рекордом.")
		return
	}

	logs, err := b.db.ListTrainings(ctx, user.ID)
	if err != nil {
		b.log.Error("listing trainings", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать журнал.")
		return
	}
	snap := engine.Aggregate(logs, 7, time.Now().In(b.loc), b.loc)
	goals, err := engine.ComputeGoals(st, ex, snap)
	if err != nil {
		b.log.Error("goals", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог посчитать цель.")
		return
	}
	b.reply(user.ChatID, formatGoals(ex, st, goals))
}

func (b *Bot) handleBalance(ctx context.Context, user models.User) {
	logs, err := b.db.ListTrainings(ctx, user.ID)
	if err != nil {
		b.log.Error("listing trainings", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать журнал.")
		return
	}
	snap := engine.Aggregate(logs, 7, time.Now().In(b.loc), b.loc)
	b.reply(user.ChatID, formatBalance(engine.BalanceScore(snap), engine.WeeklyReport(snap)))
}

func (b *Bot) handleRecords(ctx context.Context, user models.User) {
	rows, err := b.db.ListRecordRows(ctx, user.ID)
	if err != nil {
		b.log.Error("listing records", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать рекорды.")
		return
	}
	b.reply(user.ChatID, formatRecords(rows, b.loc))
}

func (b *Bot) handleStats(ctx context.Context, user models.User, args string) {
	key := strings.TrimSpace(args)
	if key == "" {
		b.reply(user.ChatID, "Формат: /stats <упражнение>\n\n"+exerciseList())
		return
	}
	ex, ok := findExercise(key)
	if !ok {
		b.reply(user.ChatID, "Не знаю упражнение «"+key+"».")
		return
	}
	logs, err := b.db.ListTrainings(ctx, user.ID)
	if err != nil {
		b.log.Error("listing trainings", "user", user.ID, "error", err)
		b.reply(user.ChatID, "Не смог прочитать журнал.")
		return
	}
	b.reply(user.ChatID, formatStats(ex, logs, time.Now().In(b.loc), b.loc))
}

// findExercise resolves a catalog key or a Cyrillic name prefix.
func findExercise(raw string) (catalog.Exercise, bool) {
	if ex, ok := catalog.Find(raw); ok {
		return ex, true
	}
	lowered := strings.ToLower(raw)
	for _, e := range catalog.All() {
		if strings.HasPrefix(strings.ToLower(e.Name), lowered) {
			return e, true
		}
	}
	return catalog.Exercise{}, false
}

func helpText() string {
	return strings.Join([]string{
		"Я веду журнал тренировок, слежу за рекордами и подсказываю, что делать дальше.",
		"",
		"/rec — что делать сейчас",
		"/log <упражнение> <результат> — записать подход",
		"/today — что уже сделано сегодня",
		"/goal <упражнение> — цель на сегодня",
		"/record — мои рекорды",
		"/balance — баланс нагрузки за неделю",
		"/stats <упражнение> — статистика и прогноз",
		"/tip — совет из книги",
	}, "\n")
}

func exerciseList() string {
	var sb strings.Builder
	sb.WriteString("Упражнения:\n")
	for _, e := range catalog.All() {
		unit := "повт."
		if e.Timed() {
			unit = "сек."
		}
		fmt.Fprintf(&sb, "%s — %s (%s)\n", e.Key, e.Name, unit)
	}
	return sb.String()
}
