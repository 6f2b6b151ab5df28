package engine

import (
	"fmt"
	"sort"

	"github.com/majowuji/wuji/internal/catalog"
)

// Goals carries the two displayed targets for the next attempt. Simple is
// always present; Adjusted appears only when the fatigue rule disagrees.
type Goals struct {
	Simple   int       `json:"simple"`
	Adjusted *Adjusted `json:"adjusted,omitempty"`
}

// Adjusted is the fatigue-reduced target with a human-readable reason naming
// the most loaded muscle group.
type Adjusted struct {
	Value  int    `json:"value"`
	Reason string `json:"reason"`
}

// ComputeGoals derives the displayed goals from the record lifecycle state
// and a 7-day load snapshot. Deterministic: identical inputs always yield
// identical output. NoRecord carries no target and is rejected as invalid
// input; callers present a default for never-attempted exercises.
func ComputeGoals(st State, ex catalog.Exercise, snap Snapshot) (Goals, error) {
	value, ok := RecordValue(st)
	if !ok {
		return Goals{}, invalidInputf("no record for %s", ex.Key)
	}

	var simple int
	if ex.Timed() {
		simple = value - 1
	} else {
		simple = value + 1
	}
	g := Goals{Simple: simple}

	if overloaded(ex, snap) {
		// Back the target off by one step, never past the current record.
		adjusted := value
		g.Adjusted = &Adjusted{
			Value:  adjusted,
			Reason: fmt.Sprintf("усталость: %s", mostLoaded(ex, snap).NameRU()),
		}
	}
	return g, nil
}

// overloaded reports whether the exercise's muscle groups sit in the top
// quartile of per-group load, i.e. meaningfully more fatigued than the
// median group.
func overloaded(ex catalog.Exercise, snap Snapshot) bool {
	groups := catalog.AllMuscles()
	loads := make([]float64, 0, len(groups))
	for _, m := range groups {
		loads = append(loads, snap.Loads[m])
	}
	sort.Float64s(loads)

	threshold := loads[(3*(len(loads)-1))/4]
	if threshold <= 0 {
		return false
	}
	avg := snap.avgFor(ex)
	return avg >= threshold
}

// mostLoaded returns the exercise muscle group with the highest snapshot
// load; declaration order breaks ties for determinism.
func mostLoaded(ex catalog.Exercise, snap Snapshot) catalog.Muscle {
	best := ex.Muscles[0]
	for _, m := range ex.Muscles[1:] {
		if snap.Loads[m] > snap.Loads[best] {
			best = m
		}
	}
	return best
}
