package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LLM == nil || cfg.FlowControl == nil || cfg.DocstringOptions == nil || cfg.UserOverrides == nil {
		t.Fatal("Default() must populate every section")
	}
	if cfg.LLM.Type != "claude" {
		t.Errorf("default provider type = %q, want claude", cfg.LLM.Type)
	}
	if cfg.LLM.Model != "claude-3-5-haiku-latest" {
		t.Errorf("default model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Errorf("default temperature = %v, want 0.1", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 4096 {
		t.Errorf("default max tokens = %d, want 4096", cfg.LLM.MaxTokens)
	}
	if cfg.FlowControl.MaxReaderSearchAttempts != 2 {
		t.Errorf("default reader attempts = %d, want 2", cfg.FlowControl.MaxReaderSearchAttempts)
	}
	if cfg.CurrentProviderTier != "free" {
		t.Errorf("default tier = %q, want free", cfg.CurrentProviderTier)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "EmptyGetsAllDefaults",
			cfg:  Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.LLM == nil || cfg.LLM.Model != DefaultModel {
					t.Errorf("llm section not defaulted: %+v", cfg.LLM)
				}
				if cfg.UserOverrides == nil || cfg.UserOverrides.BatchSize != DefaultBatchSize {
					t.Errorf("user_overrides section not defaulted: %+v", cfg.UserOverrides)
				}
				if cfg.CurrentProviderTier != DefaultProviderTier {
					t.Errorf("tier not defaulted: %q", cfg.CurrentProviderTier)
				}
			},
		},
		{
			name: "PresentSectionUntouched",
			cfg: Config{
				LLM: &LLMConfig{Type: "openai", Model: "gpt-4o", Temperature: 0.7, MaxTokens: 2048},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.LLM.Type != "openai" || cfg.LLM.Model != "gpt-4o" {
					t.Errorf("present llm section was modified: %+v", cfg.LLM)
				}
				if cfg.FlowControl == nil {
					t.Error("absent flow_control section not defaulted")
				}
			},
		},
		{
			name: "TierPreserved",
			cfg:  Config{CurrentProviderTier: "premium"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.CurrentProviderTier != "premium" {
					t.Errorf("tier = %q, want premium", cfg.CurrentProviderTier)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Normalize()
			tt.check(t, &cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"FullDefault", Default(), false},
		{"MissingLLM", &Config{FlowControl: &FlowControl{}, DocstringOptions: &DocstringOptions{}}, true},
		{"MissingFlowControl", &Config{LLM: &LLMConfig{Type: "claude", Model: "m"}, DocstringOptions: &DocstringOptions{}}, true},
		{"MissingDocstringOptions", &Config{LLM: &LLMConfig{Type: "claude", Model: "m"}, FlowControl: &FlowControl{}}, true},
		{
			name: "EmptyProviderType",
			cfg: &Config{
				LLM:              &LLMConfig{Model: "m"},
				FlowControl:      &FlowControl{},
				DocstringOptions: &DocstringOptions{},
			},
			wantErr: true,
		},
		{
			name: "EmptyModel",
			cfg: &Config{
				LLM:              &LLMConfig{Type: "claude"},
				FlowControl:      &FlowControl{},
				DocstringOptions: &DocstringOptions{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "scribe_config.yaml")

	cfg := Default()
	cfg.LLM.Type = "gemini"
	cfg.LLM.Model = "gemini-2.5-pro"
	cfg.LLM.Temperature = 0.4
	cfg.CurrentProviderTier = "standard"
	cfg.UserOverrides.MaxComponentsPerMinute = 25

	if err := SaveFile(cfg, path); err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	loaded.Normalize()

	if *loaded.LLM != *cfg.LLM {
		t.Errorf("llm round trip mismatch: got %+v, want %+v", loaded.LLM, cfg.LLM)
	}
	if *loaded.FlowControl != *cfg.FlowControl {
		t.Errorf("flow_control round trip mismatch: got %+v", loaded.FlowControl)
	}
	if *loaded.UserOverrides != *cfg.UserOverrides {
		t.Errorf("user_overrides round trip mismatch: got %+v", loaded.UserOverrides)
	}
	if loaded.CurrentProviderTier != "standard" {
		t.Errorf("tier round trip mismatch: got %q", loaded.CurrentProviderTier)
	}
}

func TestSaveFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scribe_config.yaml")

	cfg := &Config{LLM: &LLMConfig{Type: "claude"}} // missing model and sections
	if err := SaveFile(cfg, path); err == nil {
		t.Fatal("SaveFile() should reject an invalid record")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid save must not create a file")
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()

	clone.LLM.Model = "other-model"
	clone.UserOverrides.BatchSize = 99

	if cfg.LLM.Model == "other-model" {
		t.Error("Clone() must not share the llm section")
	}
	if cfg.UserOverrides.BatchSize == 99 {
		t.Error("Clone() must not share the user_overrides section")
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"WithUnit", "45s", 45 * time.Second},
		{"BareSeconds", "10", 10 * time.Second},
		{"Invalid", "not-a-duration", defaultHTTPTimeout},
		{"Empty", "", defaultHTTPTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "SCC_TEST_DURATION"
			if tt.value != "" {
				t.Setenv(key, tt.value)
			}
			if got := getEnvDuration(key, defaultHTTPTimeout); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
