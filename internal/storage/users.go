package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/majowuji/wuji/internal/models"
)

// ErrNoOwner is returned when no owner row exists yet.
var ErrNoOwner = errors.New("storage: no owner registered")

// GetOrCreateUser finds or creates a user by Telegram chat ID. The very
// first user to register becomes the owner. Returns the user and whether it
// was just created. Username and first name are refreshed on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, chatID int64, username, firstName string) (models.User, bool, error) {
	u, err := db.userByChatID(ctx, chatID)
	if err == nil {
		_, err = db.sql.ExecContext(ctx, `
			UPDATE users SET username = ?, first_name = ? WHERE chat_id = ?
		`, username, firstName, chatID)
		if err != nil {
			return models.User{}, false, fmt.Errorf("refreshing user: %w", err)
		}
		u.Username, u.FirstName = username, firstName
		return u, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, fmt.Errorf("querying user: %w", err)
	}

	var count int
	if err := db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return models.User{}, false, fmt.Errorf("counting users: %w", err)
	}
	isOwner := count == 0

	now := time.Now().UTC()
	res, err := db.sql.ExecContext(ctx, `
		INSERT INTO users (chat_id, username, first_name, created_at, is_owner)
		VALUES (?, ?, ?, ?, ?)
	`, chatID, username, firstName, now, isOwner)
	if err != nil {
		return models.User{}, false, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, false, fmt.Errorf("reading user id: %w", err)
	}
	return models.User{
		ID: id, ChatID: chatID, Username: username, FirstName: firstName,
		CreatedAt: now, IsOwner: isOwner,
	}, true, nil
}

// HasUser reports whether a user with this chat ID is registered.
func (db *DB) HasUser(ctx context.Context, chatID int64) (bool, error) {
	_, err := db.userByChatID(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying user: %w", err)
	}
	return true, nil
}

// CountUsers returns the number of registered users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// Owner returns the owner user, or ErrNoOwner if none registered yet.
func (db *DB) Owner(ctx context.Context) (models.User, error) {
	u, err := db.scanUser(db.sql.QueryRowContext(ctx, `
		SELECT id, chat_id, username, first_name, created_at, is_owner
		FROM users WHERE is_owner ORDER BY id LIMIT 1
	`))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoOwner
	}
	if err != nil {
		return models.User{}, fmt.Errorf("querying owner: %w", err)
	}
	return u, nil
}

// ListUsers returns every registered user in registration order.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.sql.QueryContext(ctx, `
		SELECT id, chat_id, username, first_name, created_at, is_owner
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := db.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (db *DB) userByChatID(ctx context.Context, chatID int64) (models.User, error) {
	return db.scanUser(db.sql.QueryRowContext(ctx, `
		SELECT id, chat_id, username, first_name, created_at, is_owner
		FROM users WHERE chat_id = ?
	`, chatID))
}

type scanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.ChatID, &u.Username, &u.FirstName, &u.CreatedAt, &u.IsOwner)
	return u, err
}
