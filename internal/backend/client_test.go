package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scribe-dev/scribe-console/internal/config"
)

func TestFetchDefaultConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/default_config" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Method != "GET" {
			t.Errorf("method = %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"llm": map[string]any{
				"type":        "openai",
				"model":       "gpt-4o-mini",
				"temperature": 0.2,
				"max_tokens":  2048,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	cfg, err := c.FetchDefaultConfig(context.Background())
	if err != nil {
		t.Fatalf("FetchDefaultConfig() failed: %v", err)
	}

	if cfg.LLM.Type != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("llm section = %+v", cfg.LLM)
	}
	// Absent sections take their defaults.
	if cfg.FlowControl == nil || cfg.FlowControl.MaxReaderSearchAttempts != config.DefaultMaxReaderSearchAttempts {
		t.Errorf("flow control not normalized: %+v", cfg.FlowControl)
	}
	if cfg.CurrentProviderTier != config.DefaultProviderTier {
		t.Errorf("tier = %q", cfg.CurrentProviderTier)
	}
}

func TestFetchDefaultConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "ServerError",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "BadJSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{invalid"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(srv.URL, 0)
			if _, err := c.FetchDefaultConfig(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFetchDefaultConfigUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", 500*time.Millisecond)
	if _, err := c.FetchDefaultConfig(context.Background()); err == nil {
		t.Fatal("expected error for unreachable backend")
	}
}

func TestTestAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/test_api" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("method = %s", r.Method)
		}

		var cfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			t.Errorf("request body: %v", err)
		}
		if cfg.LLM == nil || cfg.LLM.Type != "claude" {
			t.Errorf("posted config = %+v", cfg.LLM)
		}

		_ = json.NewEncoder(w).Encode(TestResult{
			Success:      true,
			Message:      "connection ok",
			Provider:     "claude",
			Model:        "claude-3-5-haiku-latest",
			InputTokens:  12,
			OutputTokens: 4,
			DurationMs:   350,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	res, err := c.TestAPI(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("TestAPI() failed: %v", err)
	}
	if !res.Success || res.Message != "connection ok" {
		t.Errorf("result = %+v", res)
	}
}

func TestTestAPIRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	res, err := c.TestAPI(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("TestAPI() failed: %v", err)
	}
	if !res.RateLimited {
		t.Error("expected rate limited result")
	}
	if res.Success {
		t.Error("expected failing result")
	}
	if res.Message != "too many requests" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestTestAPIFailureInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(TestResult{Success: false, Message: "rate limit exceeded"})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	res, err := c.TestAPI(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("TestAPI() failed: %v", err)
	}
	if res.Success {
		t.Error("expected failing result")
	}
	if res.Message != "rate limit exceeded" {
		t.Errorf("message = %q", res.Message)
	}
}
