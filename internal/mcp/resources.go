package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

func (h *handlers) dailySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	logs, err := h.ds.ListTrainings(ctx, uid)
	if err != nil {
		return nil, err
	}
	records, err := h.recordStates(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(h.loc)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, h.loc)

	var doneToday []models.Training
	for _, entry := range logs {
		ty, tm, td := entry.Date.In(h.loc).Date()
		if ty == y && tm == m && td == d {
			doneToday = append(doneToday, entry)
		}
	}

	summary := map[string]any{
		"date":  today.Format("2006-01-02"),
		"today": doneToday,
	}
	if decision, err := engine.Recommend(records, logs, now, h.loc); err == nil {
		summary["next"] = decision
	} else {
		h.log.Warn("daily_summary: recommendation failed", "error", err)
	}
	snap := engine.Aggregate(logs, 7, now, h.loc)
	summary["balance_score"] = engine.BalanceScore(snap)

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(catalog.All())
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
