// Package models holds the row shapes shared between storage and the
// transports. The engine consumes these as plain immutable data.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/majowuji/wuji/internal/catalog"
)

// User is a row in the users table. The first registered user is the owner.
type User struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	IsOwner   bool      `json:"is_owner"`
}

// Training is one logged attempt. Append-only: the engine reads ordered
// slices of these and never mutates them.
type Training struct {
	ID          uuid.UUID `json:"id"`
	UserID      int64     `json:"user_id"`
	Exercise    string    `json:"exercise"` // catalog key
	Date        time.Time `json:"date"`
	Reps        int       `json:"reps"`
	DurationSec *int      `json:"duration_sec,omitempty"`
	PulseBefore *int      `json:"pulse_before,omitempty"`
	PulseAfter  *int      `json:"pulse_after,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Value returns the tracked result for the exercise kind: reps for rep-based
// exercises, elapsed seconds for timed ones (0 if the duration is missing).
func (t Training) Value(ex catalog.Exercise) int {
	if ex.Timed() {
		if t.DurationSec == nil {
			return 0
		}
		return *t.DurationSec
	}
	return t.Reps
}

// RecordRow is the persisted form of a record lifecycle state. One row per
// (user, exercise) once that exercise has been logged at least once.
type RecordRow struct {
	UserID      int64      `json:"user_id"`
	Exercise    string     `json:"exercise"`
	Value       int        `json:"value"`
	SetOn       time.Time  `json:"set_on"`
	State       string     `json:"state"` // consolidating | challenge
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	ConfirmedOn *time.Time `json:"confirmed_on,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
