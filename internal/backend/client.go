// Package backend talks to the scribe generation backend over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scribe-dev/scribe-console/internal/config"
)

const defaultTimeout = 30 * time.Second

// Client is an HTTP client for the backend API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client. A zero timeout uses the default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchDefaultConfig retrieves the backend's default configuration record.
func (c *Client) FetchDefaultConfig(ctx context.Context) (*config.Config, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/default_config", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create default config request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch default config: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("default config request failed with status %d: %s", resp.StatusCode, readBodySnippet(resp.Body))
	}

	var cfg config.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode default config: %w", err)
	}

	cfg.Normalize()
	return &cfg, nil
}

// TestResult is the backend's response to a connectivity test.
type TestResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	DurationMs   int    `json:"duration_ms"`
	RateLimited  bool   `json:"rate_limited"`
}

// TestAPI asks the backend to issue a minimal LLM request with the given
// configuration and reports the outcome.
func (c *Client) TestAPI(ctx context.Context, cfg *config.Config) (*TestResult, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/test_api", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create test request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The backend answers 200 for both passing and failing tests; the
	// outcome is in the body. A 429 means the provider throttled the
	// test request itself.
	if resp.StatusCode == http.StatusTooManyRequests {
		result := &TestResult{Message: readBodySnippet(resp.Body), RateLimited: true}
		if result.Message == "" {
			result.Message = "provider rate limit hit"
		}
		return result, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("test request failed with status %d: %s", resp.StatusCode, readBodySnippet(resp.Body))
	}

	var result TestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode test result: %w", err)
	}

	return &result, nil
}

// readBodySnippet returns a short prefix of the response body for error
// messages.
func readBodySnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 256))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
