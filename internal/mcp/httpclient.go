package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/schedule"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used by the stdio MCP process so that the session stays owned by the
// running server, which is the only writer of the draft slot.
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

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) NextSplit(ctx context.Context, mesocycleID uuid.UUID) (*NextSplit, error) {
	path := "/api/v1/mesocycles/active/next-split"
	if mesocycleID != uuid.Nil {
		path = "/api/v1/mesocycles/" + mesocycleID.String() + "/next-split"
	}
	var next NextSplit
	if err := c.getJSON(ctx, path, nil, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (c *HTTPClient) WeekProgress(ctx context.Context, mesocycleID uuid.UUID) (*schedule.Progress, error) {
	var p schedule.Progress
	if err := c.getJSON(ctx, "/api/v1/mesocycles/"+mesocycleID.String()+"/progress", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CurrentSession(ctx context.Context) (*SessionSnapshot, error) {
	var snap SessionSnapshot
	if err := c.getJSON(ctx, "/api/v1/session", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) PreviousPerformance(ctx context.Context, exerciseID uuid.UUID) (*models.PreviousPerformance, error) {
	var prev *models.PreviousPerformance
	if err := c.getJSON(ctx, "/api/v1/exercises/"+exerciseID.String()+"/previous", nil, &prev); err != nil {
		return nil, err
	}
	return prev, nil
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))

	var workouts []models.Workout
	if err := c.getJSON(ctx, "/api/v1/workouts", v, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}
