package engine

import (
	"testing"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/models"
)

// TestWarmupFirst verifies that an empty day always starts with the warmup.
func TestWarmupFirst(t *testing.T) {
	d, err := Recommend(nil, nil, day(10), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Exercise.Key != catalog.Warmup().Key {
		t.Errorf("exercise = %s, want %s", d.Exercise.Key, catalog.Warmup().Key)
	}
	if d.BonusOffer || d.BaseProgramComplete {
		t.Errorf("fresh day flagged bonus=%v complete=%v", d.BonusOffer, d.BaseProgramComplete)
	}
}

// TestLeastLoadedMiddle verifies that after the warmup the recommender picks
// the middle exercise whose muscle groups worked least over the past week,
// excluding today's session from the ranking.
func TestLeastLoadedMiddle(t *testing.T) {
	sec := 300
	logs := []models.Training{
		{Exercise: "taiji_shadow", Date: day(10), DurationSec: &sec},
		// Heavy chest/triceps week; legs and core untouched.
		reps("pushups_fist", day(7), 30),
		reps("pushups_handles", day(8), 30),
		reps("strikes_combo", day(8), 40),
	}
	d, err := Recommend(nil, logs, day(10), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Exercise.Role != catalog.RoleMiddle {
		t.Fatalf("role = %s, want middle", d.Exercise.Role)
	}
	// jackknife (core only, zero load) beats every chest variant.
	if d.Exercise.Key != "jackknife" {
		t.Errorf("exercise = %s, want jackknife", d.Exercise.Key)
	}
}

// TestCooldownAfterMiddles verifies the cooldown slot once every middle
// exercise is logged today.
func TestCooldownAfterMiddles(t *testing.T) {
	logs := baseProgramDay(t, false)
	d, err := Recommend(nil, logs, day(10), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Exercise.Key != catalog.Cooldown().Key {
		t.Errorf("exercise = %s, want %s", d.Exercise.Key, catalog.Cooldown().Key)
	}
	if d.BaseProgramComplete {
		t.Error("base program flagged complete before the cooldown")
	}
}

// TestBonusAfterBaseProgram verifies the bonus offer once the full base
// program is done.
func TestBonusAfterBaseProgram(t *testing.T) {
	logs := baseProgramDay(t, true)
	d, err := Recommend(nil, logs, day(10), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.BaseProgramComplete {
		t.Error("base program not flagged complete")
	}
	if !d.BonusOffer {
		t.Error("result is not a bonus offer")
	}
	if d.Exercise.Role != catalog.RoleBonus {
		t.Errorf("role = %s, want bonus", d.Exercise.Role)
	}
}

// TestRecommendDeterministic verifies that recomputing the decision from the
// same log yields the same exercise, as after a process restart.
func TestRecommendDeterministic(t *testing.T) {
	logs := []models.Training{
		reps("pushups_fist", day(7), 30),
		reps("squats_strikes", day(8), 25),
	}
	a, _ := Recommend(nil, logs, day(10), testLoc)
	b, _ := Recommend(nil, logs, day(10), testLoc)
	if a.Exercise.Key != b.Exercise.Key {
		t.Errorf("decision differs: %s vs %s", a.Exercise.Key, b.Exercise.Key)
	}
}

// TestRecommendAttachesGoals verifies that a known record yields goals on
// the decision and an unknown exercise yields none.
func TestRecommendAttachesGoals(t *testing.T) {
	sec := 300
	logs := []models.Training{{Exercise: "taiji_shadow", Date: day(10), DurationSec: &sec}}
	records := map[string]State{
		"pushups_fist": Challenge{Value: 20, Since: day(3)},
	}
	d, err := Recommend(records, logs, day(10), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Exercise.Role != catalog.RoleMiddle {
		t.Fatalf("role = %s, want middle", d.Exercise.Role)
	}
	if d.Exercise.Key == "pushups_fist" {
		if d.Goals == nil || d.Goals.Simple != 21 {
			t.Errorf("goals = %+v, want simple 21", d.Goals)
		}
	} else if d.Goals != nil {
		t.Errorf("goals = %+v for recordless %s, want nil", d.Goals, d.Exercise.Key)
	}
}

// baseProgramDay builds a log where the warmup and every middle exercise
// (and optionally the cooldown) were done today.
func baseProgramDay(t *testing.T, withCooldown bool) []models.Training {
	t.Helper()
	var logs []models.Training
	for _, e := range catalog.BaseProgram() {
		if e.Role == catalog.RoleCooldown && !withCooldown {
			continue
		}
		if e.Timed() {
			logs = append(logs, timed(e.Key, day(10), 120))
		} else {
			logs = append(logs, reps(e.Key, day(10), 15))
		}
	}
	return logs
}
