package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/flextrack/internal/models"
	"github.com/claude/flextrack/internal/storage"
)

// HTTPClient implements DataSource by calling the FlexTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) LoadWorkouts(ctx context.Context) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := c.get(ctx, "/api/v1/workouts", &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) LoadSessions(ctx context.Context) ([]models.TrainingSession, error) {
	var sessions []models.TrainingSession
	if err := c.get(ctx, "/api/v1/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) LoadDailyLogs(ctx context.Context) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	if err := c.get(ctx, "/api/v1/logs", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context) (*storage.DataStats, error) {
	var stats storage.DataStats
	if err := c.get(ctx, "/api/v1/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
