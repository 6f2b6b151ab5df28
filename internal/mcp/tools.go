package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

// --- Tool definitions ---

var toolGetRecommendation = mcp.NewTool("get_recommendation",
	mcp.WithDescription("Get the next recommended exercise for today, with its goals when a record exists. Warmup first, then the least-loaded middle exercises, then cooldown, then an optional bonus."),
)

var toolGetGoals = mcp.NewTool("get_goals",
	mcp.WithDescription("Get today's simple and fatigue-adjusted targets for one exercise. Fails when the exercise has never been logged."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise key (e.g. pushups_fist, plank_elbows)")),
)

var toolGetBalance = mcp.NewTool("get_balance",
	mcp.WithDescription("Weekly per-muscle-group load report with an evenness score (0-100)."),
)

var toolGetTrainings = mcp.NewTool("get_trainings",
	mcp.WithDescription("Query the training log, optionally filtered by exercise and a start date."),
	mcp.WithString("exercise", mcp.Description("Exercise key filter")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD)")),
)

var toolGetRecords = mcp.NewTool("get_records",
	mcp.WithDescription("List personal records with their lifecycle state: consolidating (awaiting confirmation) or challenge (confirmed, beat it)."),
)

var toolGetProgressTrend = mcp.NewTool("get_progress_trend",
	mcp.WithDescription("Least-squares progress fit for one exercise with one-week and one-month projections. Needs at least three logged attempts."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise key")),
)

var toolLogTraining = mcp.NewTool("log_training",
	mcp.WithDescription("Log a training attempt. The value is reps for rep-based exercises and seconds for timed ones. Returns the record classification."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise key")),
	mcp.WithNumber("value", mcp.Required(), mcp.Description("Result: reps or seconds")),
	mcp.WithString("notes", mcp.Description("Free-form notes")),
)

// --- Tool handlers ---

func (h *handlers) getRecommendation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	logs, err := h.ds.ListTrainings(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_recommendation", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	records, err := h.recordStates(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	decision, err := engine.Recommend(records, logs, time.Now().In(h.loc), h.loc)
	if err != nil {
		return mcp.NewToolResultError("recommendation failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(decision)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	ex, ok := catalog.Find(key)
	if !ok {
		return mcp.NewToolResultError("unknown exercise: " + key), nil
	}
	uid := UserIDFromContext(ctx)

	records, err := h.recordStates(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	st, ok := records[key]
	if !ok {
		st = engine.NoRecord{}
	}
	if _, has := engine.RecordValue(st); !has {
		return mcp.NewToolResultError("no record for " + key + " yet; the first logged result becomes the record"), nil
	}

	logs, err := h.ds.ListTrainings(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	snap := engine.Aggregate(logs, 7, time.Now().In(h.loc), h.loc)
	goals, err := engine.ComputeGoals(st, ex, snap)
	if err != nil {
		return mcp.NewToolResultError("goal computation failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(goals)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	logs, err := h.ds.ListTrainings(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_balance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	snap := engine.Aggregate(logs, 7, time.Now().In(h.loc), h.loc)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"score": engine.BalanceScore(snap),
		"lines": engine.WeeklyReport(snap),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	logs, err := h.ds.ListTrainings(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_trainings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if key := req.GetString("exercise", ""); key != "" {
		filtered := logs[:0:0]
		for _, entry := range logs {
			if entry.Exercise == key {
				filtered = append(filtered, entry)
			}
		}
		logs = filtered
	}
	if startStr := req.GetString("start", ""); startStr != "" {
		start, err := parseFlexTime(startStr)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		filtered := logs[:0:0]
		for _, entry := range logs {
			if !entry.Date.Before(start) {
				filtered = append(filtered, entry)
			}
		}
		logs = filtered
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	rows, err := h.ds.ListRecordRows(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]*models.RecordRow, 0, len(rows))
	for _, e := range catalog.All() {
		if row, ok := rows[e.Key]; ok {
			out = append(out, row)
		}
	}
	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgressTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	if _, ok := catalog.Find(key); !ok {
		return mcp.NewToolResultError("unknown exercise: " + key), nil
	}

	uid := UserIDFromContext(ctx)
	logs, err := h.ds.ListTrainings(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	trend, ok := engine.ProgressTrend(logs, key)
	if !ok {
		return mcp.NewToolResultError("not enough data points for a trend (need 3+ on different days)"), nil
	}
	result, err := mcp.NewToolResultJSON(trend)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logTraining(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	ex, ok := catalog.Find(key)
	if !ok {
		return mcp.NewToolResultError("unknown exercise: " + key), nil
	}
	value, err := req.RequireInt("value")
	if err != nil {
		return mcp.NewToolResultError("value parameter is required"), nil
	}

	entry := models.Training{
		UserID:   UserIDFromContext(ctx),
		Exercise: key,
		Date:     time.Now().In(h.loc),
		Notes:    req.GetString("notes", ""),
	}
	if ex.Timed() {
		entry.DurationSec = &value
	} else {
		entry.Reps = value
	}

	tag, st, err := h.ds.LogAttempt(ctx, &entry, h.loc)
	if err != nil {
		h.log.Error("mcp log_training", "error", err)
		return mcp.NewToolResultError("logging failed: " + err.Error()), nil
	}

	resp := map[string]any{"classification": tag}
	if row := engine.StateToRow(st, entry.UserID, key); row != nil {
		resp["record"] = row
	}
	result, err := mcp.NewToolResultJSON(resp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// recordStates decodes the persisted rows into lifecycle states.
func (h *handlers) recordStates(ctx context.Context, uid int64) (map[string]engine.State, error) {
	rows, err := h.ds.ListRecordRows(ctx, uid)
	if err != nil {
		h.log.Error("mcp record rows", "error", err)
		return nil, err
	}
	out := make(map[string]engine.State, len(rows))
	for key, row := range rows {
		st, err := engine.StateFromRow(row)
		if err != nil {
			return nil, err
		}
		out[key] = st
	}
	return out, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
