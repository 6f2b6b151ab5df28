package mcp

import (
	"context"
	"time"

	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
	"github.com/majowuji/wuji/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via the REST API) satisfy this interface.
type DataSource interface {
	ListTrainings(ctx context.Context, userID int64) ([]models.Training, error)
	ListRecordRows(ctx context.Context, userID int64) (map[string]*models.RecordRow, error)
	LogAttempt(ctx context.Context, t *models.Training, loc *time.Location) (engine.Classification, engine.State, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
