// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds the model provider settings for the generation agent.
type LLMConfig struct {
	Type        string  `yaml:"type" json:"type"`
	APIKey      string  `yaml:"api_key" json:"api_key"`
	Model       string  `yaml:"model" json:"model"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
}

// FlowControl holds the retry and pacing caps for the generation loop.
type FlowControl struct {
	MaxReaderSearchAttempts int `yaml:"max_reader_search_attempts" json:"max_reader_search_attempts"`
	MaxVerifierRejections   int `yaml:"max_verifier_rejections" json:"max_verifier_rejections"`
	StatusSleepTime         int `yaml:"status_sleep_time" json:"status_sleep_time"`
}

// DocstringOptions holds output behavior toggles.
type DocstringOptions struct {
	OverwriteDocstrings bool `yaml:"overwrite_docstrings" json:"overwrite_docstrings"`
}

// UserOverrides holds the user-tunable rate-limit throttles that sit on top
// of the provider tier limits.
type UserOverrides struct {
	EnableRateLimiting     bool `yaml:"enable_rate_limiting" json:"enable_rate_limiting"`
	DelayBetweenRequestsMs int  `yaml:"delay_between_requests_ms" json:"delay_between_requests_ms"`
	MaxComponentsPerMinute int  `yaml:"max_components_per_minute" json:"max_components_per_minute"`
	EnableBatchProcessing  bool `yaml:"enable_batch_processing" json:"enable_batch_processing"`
	BatchSize              int  `yaml:"batch_size" json:"batch_size"`
}

// Config is the generation agent configuration record. Sections are
// optional in serialized form; absent sections take their defaults.
type Config struct {
	LLM                 *LLMConfig        `yaml:"llm,omitempty" json:"llm,omitempty"`
	FlowControl         *FlowControl      `yaml:"flow_control,omitempty" json:"flow_control,omitempty"`
	DocstringOptions    *DocstringOptions `yaml:"docstring_options,omitempty" json:"docstring_options,omitempty"`
	CurrentProviderTier string            `yaml:"current_provider_tier,omitempty" json:"current_provider_tier,omitempty"`
	UserOverrides       *UserOverrides    `yaml:"user_overrides,omitempty" json:"user_overrides,omitempty"`
}

// Per-field defaults. These are the documented fallback values applied
// whenever a section is absent from a loaded or fetched record.
const (
	DefaultProviderType = "claude"
	DefaultModel        = "claude-3-5-haiku-latest"
	DefaultTemperature  = 0.1
	DefaultMaxTokens    = 4096

	DefaultMaxReaderSearchAttempts = 2
	DefaultMaxVerifierRejections   = 1
	DefaultStatusSleepTime         = 1

	DefaultOverwriteDocstrings = false

	DefaultProviderTier = "free"

	DefaultEnableRateLimiting     = true
	DefaultDelayBetweenRequestsMs = 1000
	DefaultMaxComponentsPerMinute = 10
	DefaultEnableBatchProcessing  = false
	DefaultBatchSize              = 5
)

// Default returns a configuration record with every section present and
// every field at its documented default.
func Default() *Config {
	return &Config{
		LLM: &LLMConfig{
			Type:        DefaultProviderType,
			APIKey:      "",
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		FlowControl: &FlowControl{
			MaxReaderSearchAttempts: DefaultMaxReaderSearchAttempts,
			MaxVerifierRejections:   DefaultMaxVerifierRejections,
			StatusSleepTime:         DefaultStatusSleepTime,
		},
		DocstringOptions: &DocstringOptions{
			OverwriteDocstrings: DefaultOverwriteDocstrings,
		},
		CurrentProviderTier: DefaultProviderTier,
		UserOverrides: &UserOverrides{
			EnableRateLimiting:     DefaultEnableRateLimiting,
			DelayBetweenRequestsMs: DefaultDelayBetweenRequestsMs,
			MaxComponentsPerMinute: DefaultMaxComponentsPerMinute,
			EnableBatchProcessing:  DefaultEnableBatchProcessing,
			BatchSize:              DefaultBatchSize,
		},
	}
}

// Normalize fills any absent section with its defaults. Present sections
// are left untouched, field by field included.
func (c *Config) Normalize() {
	def := Default()
	if c.LLM == nil {
		c.LLM = def.LLM
	}
	if c.FlowControl == nil {
		c.FlowControl = def.FlowControl
	}
	if c.DocstringOptions == nil {
		c.DocstringOptions = def.DocstringOptions
	}
	if c.CurrentProviderTier == "" {
		c.CurrentProviderTier = def.CurrentProviderTier
	}
	if c.UserOverrides == nil {
		c.UserOverrides = def.UserOverrides
	}
}

// Validate checks that the required sections and provider fields are
// present. Field values themselves are not validated.
func (c *Config) Validate() error {
	if c.LLM == nil {
		return fmt.Errorf("missing required configuration section: llm")
	}
	if c.FlowControl == nil {
		return fmt.Errorf("missing required configuration section: flow_control")
	}
	if c.DocstringOptions == nil {
		return fmt.Errorf("missing required configuration section: docstring_options")
	}
	if c.LLM.Type == "" {
		return fmt.Errorf("missing required field in llm section: type")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("missing required field in llm section: model")
	}
	return nil
}

// Clone returns a deep copy of the record.
func (c *Config) Clone() *Config {
	clone := &Config{CurrentProviderTier: c.CurrentProviderTier}
	if c.LLM != nil {
		llm := *c.LLM
		clone.LLM = &llm
	}
	if c.FlowControl != nil {
		fc := *c.FlowControl
		clone.FlowControl = &fc
	}
	if c.DocstringOptions != nil {
		do := *c.DocstringOptions
		clone.DocstringOptions = &do
	}
	if c.UserOverrides != nil {
		uo := *c.UserOverrides
		clone.UserOverrides = &uo
	}
	return clone
}

// LoadFile reads a configuration record from a YAML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveFile validates the record and writes it to a YAML file, creating
// parent directories as needed.
func SaveFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
