package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func mustFind(t *testing.T, key string) catalog.Exercise {
	t.Helper()
	ex, ok := catalog.Find(key)
	if !ok {
		t.Fatalf("exercise %s missing", key)
	}
	return ex
}

// TestTransitionMessages verifies which classifications trigger the record
// banner and which stay quiet.
func TestTransitionMessages(t *testing.T) {
	ex := mustFind(t, "pushups_fist")
	cons := engine.Consolidating{Value: 20, Start: day(1), WindowEnd: day(8)}
	chal := engine.Challenge{Value: 20, Since: day(3)}

	first := formatTransition(engine.FirstRecord, cons, ex, time.UTC)
	if !strings.Contains(first, "🏆") || !strings.Contains(first, "20") {
		t.Errorf("first record message = %q", first)
	}

	newRec := formatTransition(engine.NewRecord, cons, ex, time.UTC)
	if !strings.Contains(newRec, "НОВЫЙ РЕКОРД") {
		t.Errorf("new record message = %q", newRec)
	}

	confirmed := formatTransition(engine.Confirmed, chal, ex, time.UTC)
	if strings.Contains(confirmed, "🏆") {
		t.Errorf("confirmation must not re-announce a record: %q", confirmed)
	}
	if !strings.Contains(confirmed, "подтверждён") {
		t.Errorf("confirmed message = %q", confirmed)
	}

	quiet := formatTransition(engine.NoChange, chal, ex, time.UTC)
	if strings.Contains(quiet, "🏆") || strings.Contains(quiet, "РЕКОРД") {
		t.Errorf("repeat must stay quiet: %q", quiet)
	}
}

// TestTimedUnits verifies timed exercises render seconds, not reps.
func TestTimedUnits(t *testing.T) {
	ex := mustFind(t, "plank_elbows")
	cons := engine.Consolidating{Value: 90, Start: day(1), WindowEnd: day(8)}
	msg := formatTransition(engine.FirstRecord, cons, ex, time.UTC)
	if !strings.Contains(msg, "сек") {
		t.Errorf("timed message lacks seconds unit: %q", msg)
	}
}

func TestFormatDecisionWithGoals(t *testing.T) {
	d := engine.Decision{
		Exercise: mustFind(t, "pushups_fist"),
		Goals:    &engine.Goals{Simple: 21},
		Reason:   "грудь мало работали",
	}
	msg := formatDecision(d)
	if !strings.Contains(msg, "отжимания на кулаках") {
		t.Errorf("decision lacks exercise name: %q", msg)
	}
	if !strings.Contains(msg, "21") {
		t.Errorf("decision lacks goal: %q", msg)
	}

	d.Goals.Adjusted = &engine.Adjusted{Value: 20, Reason: "усталость: грудь"}
	msg = formatDecision(d)
	if !strings.Contains(msg, "усталость: грудь") {
		t.Errorf("decision lacks adjustment reason: %q", msg)
	}
}

func TestFormatDecisionBonus(t *testing.T) {
	d := engine.Decision{
		Exercise:            mustFind(t, "bridge"),
		BonusOffer:          true,
		BaseProgramComplete: true,
	}
	msg := formatDecision(d)
	if !strings.Contains(msg, "закрыта") {
		t.Errorf("bonus message lacks completion note: %q", msg)
	}
	if !strings.Contains(msg, "Бонус") {
		t.Errorf("bonus message = %q", msg)
	}
}

func TestFormatToday(t *testing.T) {
	empty := formatToday(nil, day(10), time.UTC)
	if !strings.Contains(empty, "ещё ничего") {
		t.Errorf("empty day message = %q", empty)
	}

	sec := 300
	logs := []models.Training{
		{Exercise: "taiji_shadow", Date: day(10), DurationSec: &sec},
		{Exercise: "pushups_fist", Date: day(10), Reps: 20},
		{Exercise: "pushups_fist", Date: day(9), Reps: 99}, // yesterday, excluded
	}
	msg := formatToday(logs, day(10), time.UTC)
	if !strings.Contains(msg, "20") || strings.Contains(msg, "99") {
		t.Errorf("today message = %q", msg)
	}
}

func TestFormatBalanceBars(t *testing.T) {
	lines := []engine.ReportLine{
		{Muscle: catalog.MuscleChest, Volume: 100, Bar: "[++++]"},
		{Muscle: catalog.MuscleLegs, Volume: 10, Bar: "[+...]"},
	}
	msg := formatBalance(72, lines)
	if !strings.Contains(msg, "[++++]") || !strings.Contains(msg, "грудь") {
		t.Errorf("balance message = %q", msg)
	}
	if !strings.Contains(msg, "72/100") {
		t.Errorf("balance message lacks score: %q", msg)
	}
}

func TestFindExerciseByNamePrefix(t *testing.T) {
	ex, ok := findExercise("отжимания на кулаках")
	if !ok || ex.Key != "pushups_fist" {
		t.Errorf("name lookup = %+v, %v", ex, ok)
	}
	ex, ok = findExercise("pushups_fist")
	if !ok || ex.Key != "pushups_fist" {
		t.Errorf("key lookup = %+v, %v", ex, ok)
	}
	if _, ok := findExercise("бёрпи"); ok {
		t.Error("unknown exercise resolved")
	}
}
