package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type logTrainingRequest struct {
	UserID      int64  `json:"user_id"`
	Exercise    string `json:"exercise"`
	Reps        int    `json:"reps"`
	DurationSec *int   `json:"duration_sec,omitempty"`
	PulseBefore *int   `json:"pulse_before,omitempty"`
	PulseAfter  *int   `json:"pulse_after,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date,omitempty"` // RFC3339, defaults to now
}

type logTrainingResponse struct {
	Classification engine.Classification `json:"classification"`
	Record         *recordView           `json:"record,omitempty"`
	Goals          *engine.Goals         `json:"goals,omitempty"`
}

type recordView struct {
	Exercise    string     `json:"exercise"`
	Value       int        `json:"value"`
	State       string     `json:"state"`
	SetOn       time.Time  `json:"set_on"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	ConfirmedOn *time.Time `json:"confirmed_on,omitempty"`
}

func (s *Server) handleLogTraining(w http.ResponseWriter, r *http.Request) {
	var req logTrainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	ex, ok := catalog.Find(req.Exercise)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise: " + req.Exercise})
		return
	}

	date := time.Now().In(s.loc)
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
			return
		}
		date = parsed
	}

	entry := models.Training{
		UserID:      req.UserID,
		Exercise:    req.Exercise,
		Date:        date,
		Reps:        req.Reps,
		DurationSec: req.DurationSec,
		PulseBefore: req.PulseBefore,
		PulseAfter:  req.PulseAfter,
		Notes:       req.Notes,
	}

	tag, st, err := s.db.LogAttempt(r.Context(), &entry, s.loc)
	if err != nil {
		var invalid *engine.InvalidInputError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("log attempt failed", "exercise", req.Exercise, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.m.TrainingsLogged.WithLabelValues(req.Exercise).Inc()
	s.m.RecordTransitions.WithLabelValues(req.Exercise, string(tag)).Inc()

	resp := logTrainingResponse{Classification: tag}
	if row := engine.StateToRow(st, req.UserID, req.Exercise); row != nil {
		resp.Record = &recordView{
			Exercise:    row.Exercise,
			Value:       row.Value,
			State:       row.State,
			SetOn:       row.SetOn,
			WindowEnd:   row.WindowEnd,
			ConfirmedOn: row.ConfirmedOn,
		}
	}
	if goals := s.goalsFor(r, req.UserID, ex, st); goals != nil {
		resp.Goals = goals
	}
	writeJSON(w, http.StatusOK, resp)
}

// goalsFor computes display goals for a record state, or nil when the
// exercise has no record yet.
func (s *Server) goalsFor(r *http.Request, userID int64, ex catalog.Exercise, st engine.State) *engine.Goals {
	if _, ok := engine.RecordValue(st); !ok {
		return nil
	}
	logs, err := s.db.ListTrainings(r.Context(), userID)
	if err != nil {
		s.log.Error("listing trainings for goals", "error", err)
		return nil
	}
	snap := engine.Aggregate(logs, 7, time.Now().In(s.loc), s.loc)
	goals, err := engine.ComputeGoals(st, ex, snap)
	if err != nil {
		return nil
	}
	return &goals
}

func (s *Server) handleListTrainings(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var logs []models.Training
	if ex := r.URL.Query().Get("exercise"); ex != "" {
		logs, err = s.db.ListTrainingsForExercise(r.Context(), userID, ex)
	} else {
		logs, err = s.db.ListTrainings(r.Context(), userID)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.Training{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	logs, err := s.db.ListTrainings(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	records, err := s.db.RecordStates(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	decision, err := engine.Recommend(records, logs, time.Now().In(s.loc), s.loc)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.m.Recommendations.WithLabelValues(string(decision.Exercise.Role)).Inc()
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	key := chi.URLParam(r, "exercise")
	ex, ok := catalog.Find(key)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise: " + key})
		return
	}

	row, err := s.db.GetRecordRow(r.Context(), userID, key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	st, err := engine.StateFromRow(row)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if _, ok := engine.RecordValue(st); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no record for " + key})
		return
	}

	logs, err := s.db.ListTrainings(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	snap := engine.Aggregate(logs, 7, time.Now().In(s.loc), s.loc)
	goals, err := engine.ComputeGoals(st, ex, snap)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	logs, err := s.db.ListTrainings(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	snap := engine.Aggregate(logs, 7, time.Now().In(s.loc), s.loc)
	writeJSON(w, http.StatusOK, map[string]any{
		"score": engine.BalanceScore(snap),
		"lines": engine.WeeklyReport(snap),
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := s.db.ListRecordRows(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := make([]recordView, 0, len(rows))
	for _, e := range catalog.All() {
		row, ok := rows[e.Key]
		if !ok {
			continue
		}
		out = append(out, recordView{
			Exercise:    row.Exercise,
			Value:       row.Value,
			State:       row.State,
			SetOn:       row.SetOn,
			WindowEnd:   row.WindowEnd,
			ConfirmedOn: row.ConfirmedOn,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	key := chi.URLParam(r, "exercise")
	if _, ok := catalog.Find(key); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise: " + key})
		return
	}

	logs, err := s.db.ListTrainings(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sets, total := engine.TodayStats(logs, key, time.Now().In(s.loc), s.loc)
	stats := map[string]any{
		"total_volume":     engine.TotalVolume(logs, key),
		"weekly_frequency": engine.WeeklyFrequency(logs),
		"today_sets":       sets,
		"today_total":      total,
	}
	if trend, ok := engine.ProgressTrend(logs, key); ok {
		stats["trend"] = trend
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

func userIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return 0, errors.New("user_id parameter required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid user_id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
