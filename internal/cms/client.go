// Package cms reads portfolio content from the hosted structured-content
// query API.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config selects the hosted project and dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string
	Timeout    time.Duration
}

// Client queries the hosted content API.
type Client struct {
	cfg     Config
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new hosted content client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("cms: project ID is required")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2025-01-01"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	host := "api.sanity.io"
	if cfg.UseCDN {
		host = "apicdn.sanity.io"
	}
	c := &Client{
		cfg:     cfg,
		baseURL: fmt.Sprintf("https://%s.%s", cfg.ProjectID, host),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

// Query runs a query and decodes its result into out. Parameters are passed
// as JSON values. It reports whether the result was non-null.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) (bool, error) {
	v := url.Values{}
	v.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return false, fmt.Errorf("encoding query parameter %s: %w", name, err)
		}
		v.Set("$"+name, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s",
		c.baseURL, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset), v.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("cms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read cms response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil {
			if msg := apiErr.Error.Description; msg != "" {
				return false, fmt.Errorf("cms returned status %d: %s", resp.StatusCode, msg)
			}
			if apiErr.Message != "" {
				return false, fmt.Errorf("cms returned status %d: %s", resp.StatusCode, apiErr.Message)
			}
		}
		return false, fmt.Errorf("cms returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return false, fmt.Errorf("failed to unmarshal cms response: %w", err)
	}
	c.logger.Debug("cms query",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("server_ms", qr.Ms))

	if len(qr.Result) == 0 || string(qr.Result) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return false, fmt.Errorf("failed to decode cms result: %w", err)
	}
	return true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
