package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, loc *time.Location, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Wuji", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Wuji training server. Query the training log, personal records, load balance, and goals; log new attempts. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, loc: loc, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetRecommendation, Handler: h.getRecommendation},
		server.ServerTool{Tool: toolGetGoals, Handler: h.getGoals},
		server.ServerTool{Tool: toolGetBalance, Handler: h.getBalance},
		server.ServerTool{Tool: toolGetTrainings, Handler: h.getTrainings},
		server.ServerTool{Tool: toolGetRecords, Handler: h.getRecords},
		server.ServerTool{Tool: toolGetProgressTrend, Handler: h.getProgressTrend},
		server.ServerTool{Tool: toolLogTraining, Handler: h.logTraining},
	)

	s.AddResources(
		server.ServerResource{Resource: resDailySummary, Handler: h.dailySummary},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	loc *time.Location
	log *slog.Logger
}

// --- Resource definitions ---

var resDailySummary = mcp.NewResource(
	"wuji://daily_summary",
	"Daily Summary",
	mcp.WithResourceDescription("Today's logged exercises, the next recommendation, and the weekly balance score"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"wuji://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises with roles, muscle groups, and measurement kinds"),
	mcp.WithMIMEType("application/json"),
)
