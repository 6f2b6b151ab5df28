package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/metrics"
	"github.com/majowuji/wuji/internal/storage"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wuji.db")
	if err := storage.RunMigrations(path, "../../migrations"); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, testAPIKey, time.UTC, metrics.New(), log)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestHealthz verifies the health endpoint needs no auth.
func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// TestAPIKeyRequired verifies that API routes reject missing and wrong keys.
func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}
}

// TestLogTrainingFirstRecord verifies a first attempt over the API creates a
// consolidating record.
func TestLogTrainingFirstRecord(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"pushups_fist","reps":20}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp logTrainingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Classification != engine.FirstRecord {
		t.Errorf("classification = %q, want %q", resp.Classification, engine.FirstRecord)
	}
	if resp.Record == nil || resp.Record.Value != 20 || resp.Record.State != "consolidating" {
		t.Errorf("record = %+v", resp.Record)
	}
	if resp.Goals == nil || resp.Goals.Simple != 21 {
		t.Errorf("goals = %+v, want simple 21", resp.Goals)
	}
}

// TestLogTrainingRejectsBadInput verifies bad exercise keys and non-positive
// values come back as 400s.
func TestLogTrainingRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"burpees","reps":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown exercise: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"pushups_fist","reps":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero reps: status = %d, want 400", rec.Code)
	}
}

// TestRecommendationFlow verifies the recommendation endpoint starts a fresh
// day with the warmup and advances once it is logged.
func TestRecommendationFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/recommendation?user_id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var d engine.Decision
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Exercise.Key != "taiji_shadow" {
		t.Errorf("first pick = %s, want taiji_shadow", d.Exercise.Key)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"taiji_shadow","duration_sec":300}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("warmup log: status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/recommendation?user_id=1", "")
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Exercise.Key == "taiji_shadow" {
		t.Error("warmup recommended twice in one day")
	}
}

// TestGoalsNoRecord verifies a 404 for an exercise that was never logged.
func TestGoalsNoRecord(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/goals/pushups_fist?user_id=1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestGoalsAfterRecord verifies the goals endpoint once a record exists.
func TestGoalsAfterRecord(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"plank_elbows","duration_sec":90}`)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/goals/plank_elbows?user_id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var g engine.Goals
	if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Simple != 89 {
		t.Errorf("simple = %d, want 89 (less time is better)", g.Simple)
	}
}

// TestBalanceReport verifies the balance endpoint shape.
func TestBalanceReport(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"pushups_fist","reps":20}`)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/balance?user_id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Score float64             `json:"score"`
		Lines []engine.ReportLine `json:"lines"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Lines) == 0 {
		t.Error("no report lines")
	}
	if resp.Lines[0].Volume != 20 {
		t.Errorf("top line volume = %v, want 20", resp.Lines[0].Volume)
	}
}

// TestListTrainingsAndRecords verifies the listing endpoints.
func TestListTrainingsAndRecords(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"pushups_fist","reps":20}`)
	doJSON(t, s, http.MethodPost, "/api/v1/trainings",
		`{"user_id":1,"exercise":"jackknife","reps":15}`)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/trainings?user_id=1&exercise=pushups_fist", "")
	var trainings []json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&trainings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trainings) != 1 {
		t.Errorf("filtered trainings = %d, want 1", len(trainings))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/records?user_id=1", "")
	var records []recordView
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, want 2", len(records))
	}
}

// TestUserIDRequired verifies query endpoints reject a missing user id.
func TestUserIDRequired(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/recommendation", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
