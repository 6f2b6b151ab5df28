package engine

import (
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/models"
)

// consolidationDays is the window in which a new record must be repeated to
// become confirmed.
const consolidationDays = 7

// State is the record lifecycle for one (user, exercise). A sealed sum type:
// exactly NoRecord, Consolidating, or Challenge.
type State interface {
	isState()
}

// NoRecord means no attempt has ever been logged.
type NoRecord struct{}

// Consolidating holds a record awaiting confirmation: repeating Value before
// WindowEnd confirms it.
type Consolidating struct {
	Value     int
	Start     time.Time // date the record value was set
	WindowEnd time.Time
}

// Challenge is the post-confirmation state: the displayed goal becomes
// "beat Value". Only a strict improvement leaves it.
type Challenge struct {
	Value int
	Since time.Time
}

func (NoRecord) isState()      {}
func (Consolidating) isState() {}
func (Challenge) isState()     {}

// Classification tags a transition result for user-visible messaging. The
// record banner fires only on FirstRecord and NewRecord.
type Classification string

const (
	FirstRecord  Classification = "first_record"
	NewRecord    Classification = "new_record"
	Confirmed    Classification = "confirmed"
	AutoExtended Classification = "auto_extended"
	NoChange     Classification = "no_change"
)

// improves reports whether a strictly beats b for the exercise kind:
// more reps, or fewer seconds for timed exercises.
func improves(ex catalog.Exercise, a, b int) bool {
	if ex.Timed() {
		return a < b
	}
	return a > b
}

// Apply advances the record lifecycle with a new logged result. The caller
// must serialize calls per (user, exercise); Apply itself reads prior state
// and returns the next without touching shared data.
func Apply(st State, ex catalog.Exercise, value int, date time.Time, loc *time.Location) (State, Classification, error) {
	if value <= 0 {
		return st, NoChange, invalidInputf("result value %d must be positive", value)
	}
	day := dayOf(date, loc)

	switch s := st.(type) {
	case NoRecord:
		next := Consolidating{Value: value, Start: day, WindowEnd: day.AddDate(0, 0, consolidationDays)}
		return next, FirstRecord, nil

	case Consolidating:
		switch {
		case improves(ex, value, s.Value):
			// A strictly new record always restarts consolidation; it does
			// not count as confirming the old one.
			next := Consolidating{Value: value, Start: day, WindowEnd: day.AddDate(0, 0, consolidationDays)}
			return next, NewRecord, nil
		case value == s.Value && !day.After(s.WindowEnd):
			return Challenge{Value: s.Value, Since: day}, Confirmed, nil
		case day.After(s.WindowEnd):
			// Window lapsed unconfirmed: the consolidation period restarts
			// anchored to this attempt rather than lapsing.
			next := Consolidating{Value: s.Value, Start: s.Start, WindowEnd: day.AddDate(0, 0, consolidationDays)}
			return next, AutoExtended, nil
		default:
			return s, NoChange, nil
		}

	case Challenge:
		if improves(ex, value, s.Value) {
			next := Consolidating{Value: value, Start: day, WindowEnd: day.AddDate(0, 0, consolidationDays)}
			return next, NewRecord, nil
		}
		// Repeating an already-confirmed value must never re-announce a
		// record.
		return s, NoChange, nil

	case nil:
		return st, NoChange, inconsistentStatef("nil record state for %s", ex.Key)
	default:
		return st, NoChange, inconsistentStatef("unknown record state %T for %s", st, ex.Key)
	}
}

// RecordValue returns the current record value held by the state, if any.
func RecordValue(st State) (int, bool) {
	switch s := st.(type) {
	case Consolidating:
		return s.Value, true
	case Challenge:
		return s.Value, true
	default:
		return 0, false
	}
}

// Row state names used by persistence.
const (
	stateConsolidating = "consolidating"
	stateChallenge     = "challenge"
)

// StateFromRow decodes a persisted record row back into a lifecycle state.
// A nil row means no record exists yet. Corrupted rows surface as
// InconsistentStateError; the caller may choose to fall back to NoRecord
// after reporting the anomaly.
func StateFromRow(row *models.RecordRow) (State, error) {
	if row == nil {
		return NoRecord{}, nil
	}
	switch row.State {
	case stateConsolidating:
		if row.WindowEnd == nil {
			return nil, inconsistentStatef("consolidating row for %s has no window end", row.Exercise)
		}
		return Consolidating{Value: row.Value, Start: row.SetOn, WindowEnd: *row.WindowEnd}, nil
	case stateChallenge:
		since := row.SetOn
		if row.ConfirmedOn != nil {
			since = *row.ConfirmedOn
		}
		return Challenge{Value: row.Value, Since: since}, nil
	default:
		return nil, inconsistentStatef("row for %s has state %q", row.Exercise, row.State)
	}
}

// StateToRow encodes a lifecycle state for persistence. NoRecord has no row
// representation and returns nil.
func StateToRow(st State, userID int64, exercise string) *models.RecordRow {
	switch s := st.(type) {
	case Consolidating:
		end := s.WindowEnd
		return &models.RecordRow{
			UserID:    userID,
			Exercise:  exercise,
			Value:     s.Value,
			SetOn:     s.Start,
			State:     stateConsolidating,
			WindowEnd: &end,
		}
	case Challenge:
		since := s.Since
		return &models.RecordRow{
			UserID:      userID,
			Exercise:    exercise,
			Value:       s.Value,
			SetOn:       s.Since,
			State:       stateChallenge,
			ConfirmedOn: &since,
		}
	default:
		return nil
	}
}
