package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

// HTTPClient implements DataSource by calling the Wuji REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives on
// the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

func userParams(userID int64) url.Values {
	v := url.Values{}
	v.Set("user_id", strconv.FormatInt(userID, 10))
	return v
}

func (c *HTTPClient) ListTrainings(ctx context.Context, userID int64) ([]models.Training, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/trainings", userParams(userID), nil)
	if err != nil {
		return nil, err
	}
	var logs []models.Training
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode trainings: %w", err)
	}
	return logs, nil
}

func (c *HTTPClient) ListRecordRows(ctx context.Context, userID int64) (map[string]*models.RecordRow, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/records", userParams(userID), nil)
	if err != nil {
		return nil, err
	}
	var rows []models.RecordRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	out := make(map[string]*models.RecordRow, len(rows))
	for i := range rows {
		rows[i].UserID = userID
		out[rows[i].Exercise] = &rows[i]
	}
	return out, nil
}

func (c *HTTPClient) LogAttempt(ctx context.Context, t *models.Training, _ *time.Location) (engine.Classification, engine.State, error) {
	payload := map[string]any{
		"user_id":  t.UserID,
		"exercise": t.Exercise,
		"reps":     t.Reps,
		"date":     t.Date.Format(time.RFC3339),
		"notes":    t.Notes,
	}
	if t.DurationSec != nil {
		payload["duration_sec"] = *t.DurationSec
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/trainings", nil, payload)
	if err != nil {
		return "", nil, err
	}

	var resp struct {
		Classification engine.Classification `json:"classification"`
		Record         *models.RecordRow     `json:"record"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("httpclient: decode log response: %w", err)
	}
	st, err := engine.StateFromRow(resp.Record)
	if err != nil {
		return "", nil, err
	}
	return resp.Classification, st, nil
}
