package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

// GetRecordRow returns the persisted record row for (user, exercise), or
// nil when the exercise has never been logged.
func (db *DB) GetRecordRow(ctx context.Context, userID int64, exercise string) (*models.RecordRow, error) {
	row := db.sql.QueryRowContext(ctx, `
		SELECT user_id, exercise, value, set_on, state, window_end, confirmed_on, updated_at
		FROM records WHERE user_id = ? AND exercise = ?
	`, userID, exercise)

	var r models.RecordRow
	err := row.Scan(&r.UserID, &r.Exercise, &r.Value, &r.SetOn, &r.State,
		&r.WindowEnd, &r.ConfirmedOn, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return &r, nil
}

// ListRecordRows returns every record row for a user, keyed by exercise.
func (db *DB) ListRecordRows(ctx context.Context, userID int64) (map[string]*models.RecordRow, error) {
	rows, err := db.sql.QueryContext(ctx, `
		SELECT user_id, exercise, value, set_on, state, window_end, confirmed_on, updated_at
		FROM records WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.RecordRow)
	for rows.Next() {
		var r models.RecordRow
		if err := rows.Scan(&r.UserID, &r.Exercise, &r.Value, &r.SetOn, &r.State,
			&r.WindowEnd, &r.ConfirmedOn, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out[r.Exercise] = &r
	}
	return out, rows.Err()
}

// RecordStates decodes every record row for a user into lifecycle states,
// keyed by exercise.
func (db *DB) RecordStates(ctx context.Context, userID int64) (map[string]engine.State, error) {
	rows, err := db.ListRecordRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]engine.State, len(rows))
	for key, row := range rows {
		st, err := engine.StateFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
		out[key] = st
	}
	return out, nil
}

// LogAttempt appends a training entry and advances the record lifecycle for
// its exercise in one step. Transitions for one user are serialized, so two
// concurrent attempts cannot both read the same stale state.
func (db *DB) LogAttempt(ctx context.Context, t *models.Training, loc *time.Location) (engine.Classification, engine.State, error) {
	ex, ok := catalog.Find(t.Exercise)
	if !ok {
		return "", nil, &engine.InvalidInputError{Reason: fmt.Sprintf("unknown exercise %q", t.Exercise)}
	}

	lock := db.userLock(t.UserID)
	lock.Lock()
	defer lock.Unlock()

	row, err := db.GetRecordRow(ctx, t.UserID, t.Exercise)
	if err != nil {
		return "", nil, err
	}
	st, err := engine.StateFromRow(row)
	if err != nil {
		return "", nil, err
	}

	// The transition runs first so a rejected value never reaches the
	// append-only log.
	next, tag, err := engine.Apply(st, ex, t.Value(ex), t.Date, loc)
	if err != nil {
		return "", nil, err
	}

	if err := db.InsertTraining(ctx, t); err != nil {
		return "", nil, err
	}
	if tag != engine.NoChange {
		if err := db.upsertRecordRow(ctx, engine.StateToRow(next, t.UserID, t.Exercise)); err != nil {
			return "", nil, err
		}
	}
	return tag, next, nil
}

func (db *DB) upsertRecordRow(ctx context.Context, r *models.RecordRow) error {
	if r == nil {
		return nil
	}
	_, err := db.sql.ExecContext(ctx, `
		INSERT INTO records (user_id, exercise, value, set_on, state, window_end, confirmed_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, exercise) DO UPDATE SET
			value = excluded.value,
			set_on = excluded.set_on,
			state = excluded.state,
			window_end = excluded.window_end,
			confirmed_on = excluded.confirmed_on,
			updated_at = excluded.updated_at
	`, r.UserID, r.Exercise, r.Value, r.SetOn.UTC(), r.State,
		r.WindowEnd, r.ConfirmedOn, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}
	return nil
}
