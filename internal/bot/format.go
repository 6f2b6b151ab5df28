package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

func unitFor(ex catalog.Exercise) string {
	if ex.Timed() {
		return "сек"
	}
	return "повт"
}

// formatTransition renders the reply to a logged attempt. The record banner
// fires only on a first or new record; a repeat of a confirmed value stays
// quiet.
func formatTransition(tag engine.Classification, st engine.State, ex catalog.Exercise, loc *time.Location) string {
	value, _ := engine.RecordValue(st)
	unit := unitFor(ex)

	switch tag {
	case engine.FirstRecord:
		end := windowEnd(st)
		return fmt.Sprintf("🏆 Первый рекорд в «%s»: %d %s!\nПовтори его до %s, чтобы закрепить.",
			ex.Name, value, unit, end.In(loc).Format("02.01"))
	case engine.NewRecord:
		end := windowEnd(st)
		return fmt.Sprintf("🏆 НОВЫЙ РЕКОРД в «%s»: %d %s!\nЗакрепи его до %s.",
			ex.Name, value, unit, end.In(loc).Format("02.01"))
	case engine.Confirmed:
		return fmt.Sprintf("✅ Рекорд %d %s в «%s» подтверждён. Теперь цель — побить его!",
			value, unit, ex.Name)
	case engine.AutoExtended:
		end := windowEnd(st)
		return fmt.Sprintf("Записано. Окно подтверждения рекорда %d %s продлено до %s.",
			value, unit, end.In(loc).Format("02.01"))
	default:
		return "Записано. Так держать!"
	}
}

func windowEnd(st engine.State) time.Time {
	if c, ok := st.(engine.Consolidating); ok {
		return c.WindowEnd
	}
	return time.Time{}
}

func formatDecision(d engine.Decision) string {
	var sb strings.Builder
	if d.BaseProgramComplete {
		sb.WriteString("Базовая программа на сегодня закрыта! 🎉\n")
		sb.WriteString(fmt.Sprintf("Бонус по желанию: %s", d.Exercise.Name))
	} else {
		sb.WriteString(fmt.Sprintf("Дальше: %s", d.Exercise.Name))
	}
	if d.Reason != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", d.Reason))
	}
	if d.Goals != nil {
		sb.WriteString(fmt.Sprintf("\nЦель: %d %s", d.Goals.Simple, unitFor(d.Exercise)))
		if d.Goals.Adjusted != nil {
			sb.WriteString(fmt.Sprintf("\nС поправкой: %d (%s)", d.Goals.Adjusted.Value, d.Goals.Adjusted.Reason))
		}
	}
	return sb.String()
}

func formatGoals(ex catalog.Exercise, st engine.State, goals engine.Goals) string {
	value, _ := engine.RecordValue(st)
	unit := unitFor(ex)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nРекорд: %d %s\nЦель: %d %s", ex.Name, value, unit, goals.Simple, unit)
	if goals.Adjusted != nil {
		fmt.Fprintf(&sb, "\nС поправкой: %d (%s)", goals.Adjusted.Value, goals.Adjusted.Reason)
	}
	return sb.String()
}

func formatToday(logs []models.Training, now time.Time, loc *time.Location) string {
	var done []models.Training
	y1, m1, d1 := now.In(loc).Date()
	for _, entry := range logs {
		y2, m2, d2 := entry.Date.In(loc).Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			done = append(done, entry)
		}
	}
	if len(done) == 0 {
		return "Сегодня ещё ничего не записано. /rec подскажет, с чего начать."
	}

	var sb strings.Builder
	sb.WriteString("Сегодня:\n")
	for _, entry := range done {
		ex, ok := catalog.Find(entry.Exercise)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "• %s — %d %s\n", ex.Name, entry.Value(ex), unitFor(ex))
	}
	return sb.String()
}

func formatBalance(score float64, lines []engine.ReportLine) string {
	var sb strings.Builder
	sb.WriteString("Баланс нагрузки за неделю:\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s %-8s %.0f\n", l.Bar, l.Muscle.NameRU(), l.Volume)
	}
	fmt.Fprintf(&sb, "\nОценка равномерности: %.0f/100", score)
	return sb.String()
}

func formatRecords(rows map[string]*models.RecordRow, loc *time.Location) string {
	if len(rows) == 0 {
		return "Рекордов пока нет. Запиши первый подход через /log."
	}

	// Catalog order keeps the list stable between calls.
	keys := make([]string, 0, len(rows))
	for _, e := range catalog.All() {
		if _, ok := rows[e.Key]; ok {
			keys = append(keys, e.Key)
		}
	}

	var sb strings.Builder
	sb.WriteString("Мои рекорды:\n")
	for _, key := range keys {
		row := rows[key]
		ex, _ := catalog.Find(key)
		switch row.State {
		case "challenge":
			fmt.Fprintf(&sb, "• %s — %d %s ✅\n", ex.Name, row.Value, unitFor(ex))
		default:
			end := ""
			if row.WindowEnd != nil {
				end = ", закрепить до " + row.WindowEnd.In(loc).Format("02.01")
			}
			fmt.Fprintf(&sb, "• %s — %d %s (на подтверждении%s)\n", ex.Name, row.Value, unitFor(ex), end)
		}
	}
	return sb.String()
}

func formatStats(ex catalog.Exercise, logs []models.Training, now time.Time, loc *time.Location) string {
	unit := unitFor(ex)
	sets, total := engine.TodayStats(logs, ex.Key, now, loc)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", ex.Name)
	fmt.Fprintf(&sb, "Всего за всё время: %d %s\n", engine.TotalVolume(logs, ex.Key), unit)
	fmt.Fprintf(&sb, "Частота: %.1f тренировок в неделю\n", engine.WeeklyFrequency(logs))
	fmt.Fprintf(&sb, "Сегодня: %d подходов, %d %s\n", sets, total, unit)

	if trend, ok := engine.ProgressTrend(logs, ex.Key); ok {
		fmt.Fprintf(&sb, "\nПрогноз (по %d точкам):\n", trend.Points)
		fmt.Fprintf(&sb, "через неделю ~%.0f, через месяц ~%.0f", trend.WeekAhead, trend.MonthAhead)
	}
	return sb.String()
}
