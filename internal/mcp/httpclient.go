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
)

// HTTPClient implements DataSource by calling the RepRight REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
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

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func devicePath(deviceID, rest string) string {
	return "/api/v1/devices/" + url.PathEscape(deviceID) + rest
}

func (c *HTTPClient) DeviceIDs(ctx context.Context) ([]string, error) {
	var body struct {
		Devices []string `json:"devices"`
	}
	if err := c.get(ctx, "/api/v1/devices", &body); err != nil {
		return nil, err
	}
	return body.Devices, nil
}

func (c *HTTPClient) Session(ctx context.Context, deviceID string) (SessionSummary, error) {
	var out SessionSummary
	err := c.get(ctx, devicePath(deviceID, "/session"), &out)
	return out, err
}

func (c *HTTPClient) TodayWorkout(ctx context.Context, deviceID string) (TodayWorkout, error) {
	var out TodayWorkout
	err := c.get(ctx, devicePath(deviceID, "/workout/today"), &out)
	return out, err
}

func (c *HTTPClient) Plan(ctx context.Context, deviceID string) (ActivePlan, error) {
	var out ActivePlan
	err := c.get(ctx, devicePath(deviceID, "/plan"), &out)
	return out, err
}

func (c *HTTPClient) SavedWorkouts(ctx context.Context, deviceID string) (SavedWorkouts, error) {
	var out SavedWorkouts
	err := c.get(ctx, devicePath(deviceID, "/saved"), &out)
	return out, err
}
