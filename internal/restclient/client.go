// Package restclient is a small HTTP client for VajraEdge's own REST
// surface (internal/restapi), grounded on grafana-k6's api/v1/client
// Client — the same BaseURL/httpClient/call shape, with the
// api2go/jsonapi envelope dropped since internal/restapi speaks plain
// JSON rather than JSON:API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/preflight"
)

// Client calls one controller's REST API.
type Client struct {
	BaseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client at construction.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a Client pointed at base ("host:port", no scheme).
func New(base string, opts ...Option) (*Client, error) {
	baseURL, err := url.Parse("http://" + base)
	if err != nil {
		return nil, fmt.Errorf("restclient: parse base %q: %w", base, err)
	}
	c := &Client{BaseURL: baseURL, httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("restclient: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := *c.BaseURL
	u.Path = path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("restclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("restclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("restclient: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("restclient: %s %s: %s: %s", method, path, resp.Status, string(data))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("restclient: decode response: %w", err)
	}
	return nil
}

// CreateTestResult is the decoded response from CreateTest.
type CreateTestResult struct {
	TestID string `json:"testId"`
	Status string `json:"status"`
}

// CreateTest submits cfg as a new single-node test.
func (c *Client) CreateTest(ctx context.Context, cfg config.TestConfig) (CreateTestResult, error) {
	var out CreateTestResult
	err := c.call(ctx, http.MethodPost, "/api/tests", cfg, &out)
	return out, err
}

// TestView is the decoded response from GetTest.
type TestView struct {
	TestID   string      `json:"testId"`
	Status   string      `json:"status"`
	Snapshot interface{} `json:"snapshot"`
}

// GetTest fetches testID's current status and metrics snapshot.
func (c *Client) GetTest(ctx context.Context, testID string) (TestView, error) {
	var out TestView
	err := c.call(ctx, http.MethodGet, "/api/tests/"+testID, nil, &out)
	return out, err
}

// StopTest asks the controller to stop testID early.
func (c *Client) StopTest(ctx context.Context, testID string) error {
	return c.call(ctx, http.MethodDelete, "/api/tests/"+testID, nil, nil)
}

// Validate runs cfg through the controller's pre-flight harness without
// starting a test.
func (c *Client) Validate(ctx context.Context, cfg config.TestConfig) (preflight.Report, error) {
	var out preflight.Report
	err := c.call(ctx, http.MethodPost, "/api/validation", cfg, &out)
	return out, err
}
