package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wuji.db")
	if err := RunMigrations(path, "../../migrations"); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFirstUserBecomesOwner(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, created, err := db.GetOrCreateUser(ctx, 100, "anna", "Анна")
	if err != nil {
		t.Fatalf("first user: %v", err)
	}
	if !created || !first.IsOwner {
		t.Errorf("first user created=%v owner=%v, want true/true", created, first.IsOwner)
	}

	second, created, err := db.GetOrCreateUser(ctx, 200, "boris", "Борис")
	if err != nil {
		t.Fatalf("second user: %v", err)
	}
	if !created || second.IsOwner {
		t.Errorf("second user created=%v owner=%v, want true/false", created, second.IsOwner)
	}

	owner, err := db.Owner(ctx)
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner.ChatID != 100 {
		t.Errorf("owner chat = %d, want 100", owner.ChatID)
	}

	count, err := db.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestGetOrCreateUserIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u1, _, err := db.GetOrCreateUser(ctx, 100, "anna", "Анна")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	u2, created, err := db.GetOrCreateUser(ctx, 100, "anna_new", "Анна")
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if created {
		t.Error("repeat call reported created")
	}
	if u2.ID != u1.ID {
		t.Errorf("id changed: %d vs %d", u2.ID, u1.ID)
	}
	if u2.Username != "anna_new" {
		t.Errorf("username = %q, want refreshed value", u2.Username)
	}
}

func TestTrainingsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, _, err := db.GetOrCreateUser(ctx, 100, "anna", "Анна")
	if err != nil {
		t.Fatalf("user: %v", err)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sec := 90
	entries := []models.Training{
		{UserID: u.ID, Exercise: "pushups_fist", Date: base, Reps: 20},
		{UserID: u.ID, Exercise: "plank_elbows", Date: base.AddDate(0, 0, 1), DurationSec: &sec},
		{UserID: u.ID, Exercise: "pushups_fist", Date: base.AddDate(0, 0, 2), Reps: 22, Notes: "тяжело"},
	}
	for i := range entries {
		if err := db.InsertTraining(ctx, &entries[i]); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	got, err := db.ListTrainings(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Fatal("not ordered by date")
		}
	}
	if got[2].Notes != "тяжело" {
		t.Errorf("notes = %q", got[2].Notes)
	}
	if got[1].DurationSec == nil || *got[1].DurationSec != 90 {
		t.Errorf("duration = %v, want 90", got[1].DurationSec)
	}

	byEx, err := db.ListTrainingsForExercise(ctx, u.ID, "pushups_fist")
	if err != nil {
		t.Fatalf("list by exercise: %v", err)
	}
	if len(byEx) != 2 {
		t.Errorf("pushups entries = %d, want 2", len(byEx))
	}

	since, err := db.ListTrainingsSince(ctx, u.ID, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(since) != 2 {
		t.Errorf("since entries = %d, want 2", len(since))
	}
}

// TestLogAttemptLifecycle drives the full record lifecycle through the
// persistence layer: first result, confirmation, then a repeat that must
// stay silent.
func TestLogAttemptLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	loc := time.UTC

	u, _, err := db.GetOrCreateUser(ctx, 100, "anna", "Анна")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)

	entry := models.Training{UserID: u.ID, Exercise: "pushups_fist", Date: base, Reps: 20}
	tag, _, err := db.LogAttempt(ctx, &entry, loc)
	if err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if tag != engine.FirstRecord {
		t.Errorf("tag = %q, want %q", tag, engine.FirstRecord)
	}

	entry = models.Training{UserID: u.ID, Exercise: "pushups_fist", Date: base.AddDate(0, 0, 2), Reps: 20}
	tag, st, err := db.LogAttempt(ctx, &entry, loc)
	if err != nil {
		t.Fatalf("confirming attempt: %v", err)
	}
	if tag != engine.Confirmed {
		t.Errorf("tag = %q, want %q", tag, engine.Confirmed)
	}
	if _, ok := st.(engine.Challenge); !ok {
		t.Errorf("state = %T, want Challenge", st)
	}

	entry = models.Training{UserID: u.ID, Exercise: "pushups_fist", Date: base.AddDate(0, 0, 3), Reps: 20}
	tag, _, err = db.LogAttempt(ctx, &entry, loc)
	if err != nil {
		t.Fatalf("repeat attempt: %v", err)
	}
	if tag != engine.NoChange {
		t.Errorf("tag = %q, want %q", tag, engine.NoChange)
	}

	// The persisted state must survive a reload.
	states, err := db.RecordStates(ctx, u.ID)
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	ch, ok := states["pushups_fist"].(engine.Challenge)
	if !ok {
		t.Fatalf("reloaded state = %T, want Challenge", states["pushups_fist"])
	}
	if ch.Value != 20 {
		t.Errorf("value = %d, want 20", ch.Value)
	}

	logs, err := db.ListTrainings(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 3 {
		t.Errorf("log entries = %d, want 3 (every attempt kept)", len(logs))
	}
}

func TestLogAttemptUnknownExercise(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, _, err := db.GetOrCreateUser(ctx, 100, "anna", "Анна")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	entry := models.Training{UserID: u.ID, Exercise: "burpees", Date: time.Now(), Reps: 10}
	_, _, err = db.LogAttempt(ctx, &entry, time.UTC)
	if err == nil {
		t.Fatal("unknown exercise accepted")
	}
	var invalid *engine.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("error = %v, want InvalidInputError", err)
	}
	logs, err := db.ListTrainings(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("entries = %d, want 0 after rejected attempt", len(logs))
	}
}

func TestLogAttemptRejectedValueNotPersisted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, _, err := db.GetOrCreateUser(ctx, 100, "anna", "Анна")
	if err != nil {
		t.Fatalf("user: %v", err)
	}

	good := models.Training{UserID: u.ID, Exercise: "pushups_fist", Date: time.Now(), Reps: 20}
	if _, _, err := db.LogAttempt(ctx, &good, time.UTC); err != nil {
		t.Fatalf("log: %v", err)
	}

	bad := models.Training{UserID: u.ID, Exercise: "pushups_fist", Date: time.Now(), Reps: 0}
	_, _, err = db.LogAttempt(ctx, &bad, time.UTC)
	var invalid *engine.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidInputError", err)
	}

	// The rejected value must not reach the append-only log, otherwise it
	// would count as today's session and skew load snapshots.
	logs, err := db.ListTrainings(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("entries = %d, want 1 after rejected attempt", len(logs))
	}
	if logs[0].Reps != 20 {
		t.Errorf("surviving entry reps = %d, want 20", logs[0].Reps)
	}

	states, err := db.RecordStates(ctx, u.ID)
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	st, ok := states["pushups_fist"].(engine.Consolidating)
	if !ok || st.Value != 20 {
		t.Errorf("state = %#v, want Consolidating value 20", states["pushups_fist"])
	}
}

func TestGetRecordRowMissing(t *testing.T) {
	db := openTestDB(t)
	row, err := db.GetRecordRow(context.Background(), 1, "pushups_fist")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row != nil {
		t.Errorf("row = %+v, want nil", row)
	}
}
