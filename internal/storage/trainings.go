package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/majowuji/wuji/internal/models"
)

// InsertTraining appends one training entry. The ID is generated here when
// the caller leaves it zero.
func (db *DB) InsertTraining(ctx context.Context, t *models.Training) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := db.sql.ExecContext(ctx, `
		INSERT INTO trainings (id, user_id, exercise, date, reps, duration_sec, pulse_before, pulse_after, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID.String(), t.UserID, t.Exercise, t.Date.UTC(), t.Reps,
		t.DurationSec, t.PulseBefore, t.PulseAfter, t.Notes)
	if err != nil {
		return fmt.Errorf("inserting training: %w", err)
	}
	return nil
}

// ListTrainings returns every entry for a user ordered by date ascending.
func (db *DB) ListTrainings(ctx context.Context, userID int64) ([]models.Training, error) {
	return db.queryTrainings(ctx, `
		SELECT id, user_id, exercise, date, reps, duration_sec, pulse_before, pulse_after, notes
		FROM trainings WHERE user_id = ? ORDER BY date, id
	`, userID)
}

// ListTrainingsSince returns a user's entries on or after the cutoff,
// ordered by date ascending.
func (db *DB) ListTrainingsSince(ctx context.Context, userID int64, since time.Time) ([]models.Training, error) {
	return db.queryTrainings(ctx, `
		SELECT id, user_id, exercise, date, reps, duration_sec, pulse_before, pulse_after, notes
		FROM trainings WHERE user_id = ? AND date >= ? ORDER BY date, id
	`, userID, since.UTC())
}

// ListTrainingsForExercise returns a user's entries for one exercise,
// ordered by date ascending.
func (db *DB) ListTrainingsForExercise(ctx context.Context, userID int64, exercise string) ([]models.Training, error) {
	return db.queryTrainings(ctx, `
		SELECT id, user_id, exercise, date, reps, duration_sec, pulse_before, pulse_after, notes
		FROM trainings WHERE user_id = ? AND exercise = ? ORDER BY date, id
	`, userID, exercise)
}

// LastTrainingDates maps each user ID to their latest entry date. Used for
// reminder scheduling.
func (db *DB) LastTrainingDates(ctx context.Context) (map[int64]time.Time, error) {
	rows, err := db.sql.QueryContext(ctx, `
		SELECT user_id, MAX(date) FROM trainings GROUP BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying last training dates: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]time.Time)
	for rows.Next() {
		var userID int64
		var last time.Time
		if err := rows.Scan(&userID, &last); err != nil {
			return nil, fmt.Errorf("scanning last training date: %w", err)
		}
		out[userID] = last
	}
	return out, rows.Err()
}

func (db *DB) queryTrainings(ctx context.Context, query string, args ...any) ([]models.Training, error) {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trainings: %w", err)
	}
	defer rows.Close()

	var out []models.Training
	for rows.Next() {
		var t models.Training
		var id string
		if err := rows.Scan(&id, &t.UserID, &t.Exercise, &t.Date, &t.Reps,
			&t.DurationSec, &t.PulseBefore, &t.PulseAfter, &t.Notes); err != nil {
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		t.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing training id: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
