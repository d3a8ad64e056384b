package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scribe-dev/scribe-console/internal/backend"
	"github.com/scribe-dev/scribe-console/internal/collector"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/db"
	"github.com/scribe-dev/scribe-console/internal/export"
	"github.com/scribe-dev/scribe-console/internal/models"
)

func newTestManager(t *testing.T, backendURL string) *Manager {
	t.Helper()

	tmpDir := t.TempDir()
	mgr, err := NewManager(&config.Settings{
		BackendURL:  backendURL,
		ConfigPath:  filepath.Join(tmpDir, "scribe_config.yaml"),
		ArchivePath: db.MemoryPath,
		ExportDir:   filepath.Join(tmpDir, "exports"),
		HTTPTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t, "http://127.0.0.1:1")

	if mgr.ConfigStore() == nil {
		t.Error("Config store should be initialized")
	}
	if mgr.Collector() == nil {
		t.Error("Collector should be initialized")
	}
	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	// A missing config file yields the built-in defaults.
	if cfg := mgr.Config(); cfg.LLM.Type != config.DefaultProviderType {
		t.Errorf("provider = %q, want %q", cfg.LLM.Type, config.DefaultProviderType)
	}
}

func TestManager_SubscribeReceivesRecordEvents(t *testing.T) {
	mgr := newTestManager(t, "http://127.0.0.1:1")

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	mgr.Collector().RecordLog(models.LevelInfo, "hello", "")

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if rec, ok := ev.(RecordsChangedEvent); ok {
				if rec.Logs != 1 {
					t.Errorf("logs = %d, want 1", rec.Logs)
				}
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for RecordsChangedEvent")
		}
	}
}

func TestManager_TestAPIRecordsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(backend.TestResult{
			Success:      true,
			Message:      "ok",
			Provider:     "claude",
			Model:        "claude-3-5-haiku-latest",
			InputTokens:  10,
			OutputTokens: 3,
			DurationMs:   120,
		})
	}))
	defer srv.Close()

	mgr := newTestManager(t, srv.URL)

	res, err := mgr.TestAPI(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("TestAPI failed: %v", err)
	}
	if !res.Success {
		t.Error("expected passing result")
	}

	logs, apiCalls, _ := mgr.Collector().Counts()
	if apiCalls != 1 {
		t.Errorf("api calls = %d, want 1", apiCalls)
	}
	if logs != 1 {
		t.Errorf("logs = %d, want 1", logs)
	}
}

func TestManager_TestAPIRateLimitRecordsEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	mgr := newTestManager(t, srv.URL)

	res, err := mgr.TestAPI(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("TestAPI failed: %v", err)
	}
	if !res.RateLimited {
		t.Error("expected rate limited result")
	}

	// One rate limit record plus its synthesized log.
	logs, apiCalls, rateLimits := mgr.Collector().Counts()
	if rateLimits != 1 {
		t.Errorf("rate limit events = %d, want 1", rateLimits)
	}
	if apiCalls != 1 {
		t.Errorf("api calls = %d, want 1", apiCalls)
	}
	if logs != 1 {
		t.Errorf("logs = %d, want 1", logs)
	}
	if warnings := mgr.Collector().Stats().Warnings; warnings != 1 {
		t.Errorf("warnings = %d, want 1", warnings)
	}
}

func TestManager_FetchDefaultConfigFallback(t *testing.T) {
	mgr := newTestManager(t, "http://127.0.0.1:1")

	cfg, err := mgr.FetchDefaultConfig(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable backend")
	}
	if cfg == nil || cfg.LLM.Type != config.DefaultProviderType {
		t.Errorf("fallback config = %+v", cfg)
	}
}

func TestManager_Export(t *testing.T) {
	mgr := newTestManager(t, "http://127.0.0.1:1")

	mgr.Collector().RecordLog(models.LevelInfo, "one", "")
	mgr.Collector().RecordAPICall(models.APICall{Provider: "claude", Model: "m"})

	res, err := mgr.Export(collector.AllSections(), export.FormatJSON, "session")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON export: %v", err)
	}
	for _, key := range []string{"metadata", "config", "logs", "api_calls"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing %q section", key)
		}
	}
}

func TestManager_ExportConfigSectionIndependent(t *testing.T) {
	mgr := newTestManager(t, "http://127.0.0.1:1")
	mgr.Collector().RecordLog(models.LevelInfo, "one", "")

	// Config without stats.
	res, err := mgr.Export(collector.Sections{Logs: true, Config: true}, export.FormatJSON, "cfg_only")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON export: %v", err)
	}
	if _, ok := doc["config"]; !ok {
		t.Error("config section should be present")
	}
	if _, ok := doc["stats"]; ok {
		t.Error("stats section should be absent")
	}

	// Stats without config.
	res, err = mgr.Export(collector.Sections{Stats: true}, export.FormatJSON, "stats_only")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err = os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	doc = nil
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON export: %v", err)
	}
	if _, ok := doc["config"]; ok {
		t.Error("config section should be absent")
	}
	if _, ok := doc["stats"]; !ok {
		t.Error("stats section should be present")
	}
}

func TestManager_SaveConfigRejectsInvalid(t *testing.T) {
	mgr := newTestManager(t, "http://127.0.0.1:1")

	bad := &config.Config{}
	if err := mgr.SaveConfig(bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestManager_Close(t *testing.T) {
	tmpDir := t.TempDir()
	mgr, err := NewManager(&config.Settings{
		BackendURL:  "http://127.0.0.1:1",
		ConfigPath:  filepath.Join(tmpDir, "cfg.yaml"),
		ArchivePath: db.MemoryPath,
		ExportDir:   tmpDir,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := mgr.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
