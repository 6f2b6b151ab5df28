// Package storage persists users, training logs, and record lifecycle rows
// in a single-file SQLite database. Record transitions are serialized per
// user here so the engine can stay a pure function.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle and provides repository methods.
type DB struct {
	sql *sql.DB

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// modernc's driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{sql: db, users: make(map[int64]*sync.Mutex)}, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	return db.sql.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dbPath, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// userLock returns the mutex serializing record transitions for one user.
func (db *DB) userLock(userID int64) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.users[userID]
	if !ok {
		l = &sync.Mutex{}
		db.users[userID] = l
	}
	return l
}
