// Package engine implements the training recommendation and record
// progression core: load aggregation, the record lifecycle state machine,
// goal calculation, and next-exercise selection. Everything here is a pure
// function over one user's log slice and record state; callers own
// persistence and per-user serialization of record transitions.
package engine

import (
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/models"
)

// Snapshot is a per-muscle-group load map for a trailing window ending at
// AsOf. Recomputed on demand; never persisted.
type Snapshot struct {
	WindowDays int
	AsOf       time.Time
	Loads      map[catalog.Muscle]float64
}

// dayOf truncates t to its civil date in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Aggregate computes the load snapshot for logs within
// [asOf-windowDays, asOf]. The contribution of an entry is its reps for
// rep-based exercises and duration-in-seconds/60 for timed ones (a volume
// proxy, not a set count). Entries with unknown exercise keys carry no
// muscle information and are skipped. Empty logs yield an all-zero snapshot.
func Aggregate(logs []models.Training, windowDays int, asOf time.Time, loc *time.Location) Snapshot {
	snap := Snapshot{
		WindowDays: windowDays,
		AsOf:       dayOf(asOf, loc),
		Loads:      make(map[catalog.Muscle]float64, len(catalog.AllMuscles())),
	}
	for _, m := range catalog.AllMuscles() {
		snap.Loads[m] = 0
	}

	from := snap.AsOf.AddDate(0, 0, -windowDays)
	for _, entry := range logs {
		day := dayOf(entry.Date, loc)
		if day.Before(from) || day.After(snap.AsOf) {
			continue
		}
		ex, ok := catalog.Find(entry.Exercise)
		if !ok {
			continue
		}
		var contribution float64
		if ex.Timed() {
			contribution = float64(entry.Value(ex)) / 60.0
		} else {
			contribution = float64(entry.Value(ex))
		}
		for _, m := range ex.Muscles {
			snap.Loads[m] += contribution
		}
	}
	return snap
}

// TotalFor sums the snapshot load across the exercise's muscle-group tags.
func (s Snapshot) TotalFor(ex catalog.Exercise) float64 {
	var total float64
	for _, m := range ex.Muscles {
		total += s.Loads[m]
	}
	return total
}

// avgFor is TotalFor divided by the number of tags.
func (s Snapshot) avgFor(ex catalog.Exercise) float64 {
	if len(ex.Muscles) == 0 {
		return 0
	}
	return s.TotalFor(ex) / float64(len(ex.Muscles))
}
