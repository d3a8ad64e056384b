package limits

import (
	"strings"
	"testing"

	"github.com/scribe-dev/scribe-console/internal/config"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		tier         string
		wantOK       bool
		wantRequests int64
	}{
		{name: "ClaudeFree", provider: "claude", tier: "free", wantOK: true, wantRequests: 4},
		{name: "ClaudeStandard", provider: "claude", tier: "standard", wantOK: true, wantRequests: 40},
		{name: "OpenAIPremium", provider: "openai", tier: "premium", wantOK: true, wantRequests: 400},
		{name: "GeminiFree", provider: "gemini", tier: "free", wantOK: true, wantRequests: 12},
		{name: "UnknownProvider", provider: "mistral", tier: "free", wantOK: false},
		{name: "UnknownTier", provider: "claude", tier: "enterprise", wantOK: false},
		{name: "EmptyBoth", provider: "", tier: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff, ok := For(tt.provider, tt.tier)
			if ok != tt.wantOK {
				t.Fatalf("For(%q, %q) ok = %v, want %v", tt.provider, tt.tier, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if eff.EffectiveRequests != tt.wantRequests {
				t.Errorf("effective requests = %d, want %d", eff.EffectiveRequests, tt.wantRequests)
			}
			if eff.EffectiveRequests >= eff.Nominal.RequestsPerMinute {
				t.Errorf("effective requests %d not below nominal %d", eff.EffectiveRequests, eff.Nominal.RequestsPerMinute)
			}
		})
	}
}

func TestForConfigOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.CurrentProviderTier = "standard"
	cfg.UserOverrides.MaxComponentsPerMinute = 0

	eff, ok := ForConfig(cfg)
	if !ok {
		t.Fatal("expected known combination for default config")
	}
	if eff.EffectiveRequests != 40 {
		t.Fatalf("effective requests = %d, want 40", eff.EffectiveRequests)
	}

	cfg.UserOverrides.MaxComponentsPerMinute = 10
	eff, _ = ForConfig(cfg)
	if eff.EffectiveRequests != 10 {
		t.Errorf("override should cap requests at 10, got %d", eff.EffectiveRequests)
	}

	// Overrides never raise the quota.
	cfg.UserOverrides.MaxComponentsPerMinute = 999
	eff, _ = ForConfig(cfg)
	if eff.EffectiveRequests != 40 {
		t.Errorf("large override should not raise quota, got %d", eff.EffectiveRequests)
	}

	// Disabled rate limiting ignores the override.
	cfg.UserOverrides.MaxComponentsPerMinute = 10
	cfg.UserOverrides.EnableRateLimiting = false
	eff, _ = ForConfig(cfg)
	if eff.EffectiveRequests != 40 {
		t.Errorf("disabled override should keep table quota, got %d", eff.EffectiveRequests)
	}
}

func TestDescribe(t *testing.T) {
	eff, ok := For("gemini", "free")
	if !ok {
		t.Fatal("gemini free should be in the table")
	}
	lines := eff.Describe()
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines including the daily cap, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[3], "/day") {
		t.Errorf("last line should carry the daily cap, got %q", lines[3])
	}

	eff, _ = For("claude", "premium")
	if got := eff.Describe(); len(got) != 3 {
		t.Errorf("no daily cap expected for claude premium, got %v", got)
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{25000, "25K"},
		{4000000, "4M"},
		{8000, "8K"},
		{1234, "1234"},
	}
	for _, tt := range tests {
		if got := formatCount(tt.in); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
