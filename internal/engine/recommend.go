package engine

import (
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/models"
)

// Decision is the recommender output: the next exercise to attempt, its
// goals when a record exists, and whether today's base program is complete
// (in which case Exercise is a bonus offer the user may decline).
type Decision struct {
	Exercise            catalog.Exercise `json:"exercise"`
	Goals               *Goals           `json:"goals,omitempty"`
	BonusOffer          bool             `json:"bonus_offer"`
	BaseProgramComplete bool             `json:"base_program_complete"`
	Reason              string           `json:"reason,omitempty"`
}

// Recommend selects the next exercise for today. Policy, in order: the fixed
// warmup if undone, then the least-loaded remaining middle exercise (7-day
// snapshot as of yesterday, since today's session is being built), then the
// fixed cooldown, and once the base program is done a bonus offer ranked the
// same way. Greedy and stateless per call: everything is derived from the
// log, so recomputing after a restart yields the same decision.
func Recommend(records map[string]State, logs []models.Training, today time.Time, loc *time.Location) (Decision, error) {
	day := dayOf(today, loc)
	done := doneToday(logs, day, loc)

	// Ranking excludes today's own session.
	rankSnap := Aggregate(logs, 7, day.AddDate(0, 0, -1), loc)
	// Goal fatigue includes what has already been done today.
	goalSnap := Aggregate(logs, 7, day, loc)

	if w := catalog.Warmup(); !done[w.Key] {
		return decisionFor(w, records, goalSnap, false, "разминка")
	}

	var remaining []catalog.Exercise
	for _, e := range catalog.Middle() {
		if !done[e.Key] {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) > 0 {
		pick := leastLoaded(remaining, rankSnap)
		reason := pick.Muscles[0].NameRU() + " мало работали"
		return decisionFor(pick, records, goalSnap, false, reason)
	}

	if c := catalog.Cooldown(); !done[c.Key] {
		return decisionFor(c, records, goalSnap, false, "заминка")
	}

	// Base program complete: offer a bonus exercise, the user may decline.
	pick := leastLoaded(catalog.Bonus(), rankSnap)
	d, err := decisionFor(pick, records, goalSnap, true, "бонус из книги")
	d.BaseProgramComplete = true
	return d, err
}

func decisionFor(ex catalog.Exercise, records map[string]State, snap Snapshot, bonus bool, reason string) (Decision, error) {
	d := Decision{Exercise: ex, BonusOffer: bonus, Reason: reason}
	st, ok := records[ex.Key]
	if !ok {
		return d, nil
	}
	if _, has := RecordValue(st); !has {
		return d, nil
	}
	g, err := ComputeGoals(st, ex, snap)
	if err != nil {
		return d, err
	}
	d.Goals = &g
	return d, nil
}

// leastLoaded picks the candidate with the lowest total load across its
// muscle tags; ties go to catalog declaration order because candidates
// arrive in that order and only a strictly lower load displaces the pick.
func leastLoaded(candidates []catalog.Exercise, snap Snapshot) catalog.Exercise {
	pick := candidates[0]
	best := snap.TotalFor(pick)
	for _, e := range candidates[1:] {
		if load := snap.TotalFor(e); load < best {
			pick, best = e, load
		}
	}
	return pick
}

// doneToday returns the set of exercise keys logged on day.
func doneToday(logs []models.Training, day time.Time, loc *time.Location) map[string]bool {
	done := make(map[string]bool)
	for _, entry := range logs {
		if dayOf(entry.Date, loc).Equal(day) {
			done[entry.Exercise] = true
		}
	}
	return done
}
