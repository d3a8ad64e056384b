package settings

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/app"
	"github.com/scribe-dev/scribe-console/internal/config"
)

func TestNew(t *testing.T) {
	state := app.NewAppState()
	m := New(state, nil)
	if m == nil {
		t.Fatal("New returned nil")
	}

	// The form starts at the documented defaults.
	cfg := m.BuildConfig()
	if cfg.LLM.Type != config.DefaultProviderType {
		t.Errorf("Provider = %q, want %q", cfg.LLM.Type, config.DefaultProviderType)
	}
	if cfg.LLM.MaxTokens != config.DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", cfg.LLM.MaxTokens, config.DefaultMaxTokens)
	}
	if cfg.CurrentProviderTier != config.DefaultProviderTier {
		t.Errorf("Tier = %q, want %q", cfg.CurrentProviderTier, config.DefaultProviderTier)
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewAppState(), nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestApplyConfig_MissingSectionsFallBack(t *testing.T) {
	m := New(app.NewAppState(), nil)

	// Only the LLM section present; everything else must show defaults.
	m.ApplyConfig(&config.Config{
		LLM: &config.LLMConfig{
			Type:        "openai",
			APIKey:      "sk-test",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
	})

	cfg := m.BuildConfig()
	if cfg.LLM.Type != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM section not applied: %+v", cfg.LLM)
	}
	if cfg.FlowControl.MaxReaderSearchAttempts != config.DefaultMaxReaderSearchAttempts {
		t.Errorf("MaxReaderSearchAttempts = %d, want default %d",
			cfg.FlowControl.MaxReaderSearchAttempts, config.DefaultMaxReaderSearchAttempts)
	}
	if cfg.UserOverrides.DelayBetweenRequestsMs != config.DefaultDelayBetweenRequestsMs {
		t.Errorf("DelayBetweenRequestsMs = %d, want default %d",
			cfg.UserOverrides.DelayBetweenRequestsMs, config.DefaultDelayBetweenRequestsMs)
	}
	if cfg.UserOverrides.EnableRateLimiting != config.DefaultEnableRateLimiting {
		t.Error("EnableRateLimiting should fall back to its default")
	}
	if cfg.CurrentProviderTier != config.DefaultProviderTier {
		t.Errorf("Tier = %q, want default", cfg.CurrentProviderTier)
	}
}

func TestApplyBuildRoundTrip(t *testing.T) {
	m := New(app.NewAppState(), nil)

	want := &config.Config{
		LLM: &config.LLMConfig{
			Type:        "gemini",
			APIKey:      "sk-roundtrip",
			Model:       "gemini-1.5-flash",
			Temperature: 0.25,
			MaxTokens:   1024,
		},
		FlowControl: &config.FlowControl{
			MaxReaderSearchAttempts: 4,
			MaxVerifierRejections:   2,
			StatusSleepTime:         3,
		},
		DocstringOptions:    &config.DocstringOptions{OverwriteDocstrings: true},
		CurrentProviderTier: "standard",
		UserOverrides: &config.UserOverrides{
			EnableRateLimiting:     true,
			DelayBetweenRequestsMs: 500,
			MaxComponentsPerMinute: 20,
			EnableBatchProcessing:  true,
			BatchSize:              8,
		},
	}

	m.ApplyConfig(want)
	got := m.BuildConfig()

	if *got.LLM != *want.LLM {
		t.Errorf("LLM = %+v, want %+v", got.LLM, want.LLM)
	}
	if *got.FlowControl != *want.FlowControl {
		t.Errorf("FlowControl = %+v, want %+v", got.FlowControl, want.FlowControl)
	}
	if *got.DocstringOptions != *want.DocstringOptions {
		t.Errorf("DocstringOptions = %+v, want %+v", got.DocstringOptions, want.DocstringOptions)
	}
	if got.CurrentProviderTier != want.CurrentProviderTier {
		t.Errorf("Tier = %q, want %q", got.CurrentProviderTier, want.CurrentProviderTier)
	}
	if *got.UserOverrides != *want.UserOverrides {
		t.Errorf("UserOverrides = %+v, want %+v", got.UserOverrides, want.UserOverrides)
	}
}

func TestBuildConfig_UnparsableNumbersFallBack(t *testing.T) {
	m := New(app.NewAppState(), nil)

	m.inputs[fieldTemperature].SetValue("warm")
	m.inputs[fieldMaxTokens].SetValue("lots")
	m.inputs[fieldBatchSize].SetValue("")

	cfg := m.BuildConfig()
	if cfg.LLM.Temperature != config.DefaultTemperature {
		t.Errorf("Temperature = %v, want default %v", cfg.LLM.Temperature, config.DefaultTemperature)
	}
	if cfg.LLM.MaxTokens != config.DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", cfg.LLM.MaxTokens, config.DefaultMaxTokens)
	}
	if cfg.UserOverrides.BatchSize != config.DefaultBatchSize {
		t.Errorf("BatchSize = %d, want default %d", cfg.UserOverrides.BatchSize, config.DefaultBatchSize)
	}
}

func TestRefreshLimits(t *testing.T) {
	m := New(app.NewAppState(), nil)

	// Defaults are claude/free, which is in the table.
	if len(m.limitLines) == 0 {
		t.Error("limit display should be populated for claude/free")
	}

	// Unknown provider shows the placeholder.
	m.inputs[fieldProviderType].SetValue("mystery")
	m.refreshLimits()
	if len(m.limitLines) != 0 {
		t.Error("limit display should be empty for an unknown provider")
	}
}

func TestUpdate_ToggleAndCycle(t *testing.T) {
	m := New(app.NewAppState(), nil)

	// Toggle the overwrite flag.
	m.focused = fieldOverwrite
	before := m.toggles[fieldOverwrite]
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.toggles[fieldOverwrite] == before {
		t.Error("Enter should toggle a boolean field")
	}

	// Cycle the tier.
	m.focused = fieldProviderTier
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.BuildConfig().CurrentProviderTier != "standard" {
		t.Errorf("Tier = %q, want standard after one cycle", m.BuildConfig().CurrentProviderTier)
	}
}

func TestUpdate_EditTextField(t *testing.T) {
	m := New(app.NewAppState(), nil)

	m.focused = fieldModel
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.editing {
		t.Fatal("Enter on a text field should start editing")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Error("Enter should finish editing")
	}
}

func TestUpdate_DefaultsFetchFailureKeepsForm(t *testing.T) {
	m := New(app.NewAppState(), nil)

	m.inputs[fieldModel].SetValue("my-custom-model")

	m.Update(app.DefaultsFetchedMsg{
		Config: config.Default(),
		Error:  errFake,
	})

	if m.inputs[fieldModel].Value() != "my-custom-model" {
		t.Error("fetch failure should leave the form untouched")
	}

	m.Update(app.DefaultsFetchedMsg{Config: config.Default()})
	if m.inputs[fieldModel].Value() != config.DefaultModel {
		t.Error("successful fetch should apply the defaults")
	}
}

func TestUpdate_ConfigLoaded(t *testing.T) {
	m := New(app.NewAppState(), nil)

	cfg := config.Default()
	cfg.LLM.Model = "loaded-model"
	m.Update(app.ConfigLoadedMsg{Config: cfg})

	if m.inputs[fieldModel].Value() != "loaded-model" {
		t.Error("ConfigLoadedMsg should apply the config to the form")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewAppState()
	state.SetLoading("initial", false)
	m := New(state, nil)
	m.SetSize(100, 40)

	view := m.View()
	if view == "" {
		t.Fatal("View returned empty string")
	}
	if !strings.Contains(view, "Generation Settings") {
		t.Error("View should contain the title")
	}
	if !strings.Contains(view, "Provider Limits") {
		t.Error("View should contain the limit display")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewAppState(), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

var errFake = fakeErr("fetch failed")
