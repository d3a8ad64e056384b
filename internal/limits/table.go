// Package limits provides the static provider rate-limit tables and the
// derived "effective" quotas shown in the console.
package limits

import (
	"github.com/scribe-dev/scribe-console/internal/config"
)

// TierLimits holds the nominal per-minute limits for one provider tier.
// RequestsPerDay is zero when the tier has no daily cap.
type TierLimits struct {
	RequestsPerMinute     int64
	InputTokensPerMinute  int64
	OutputTokensPerMinute int64
	RequestsPerDay        int64
}

// Effective holds the quotas the console actually advertises: the request
// quota is held at 80% of nominal to keep the agent clear of hard refusals.
type Effective struct {
	Provider          string
	Tier              string
	Nominal           TierLimits
	EffectiveRequests int64
}

// effectiveRequestFactor is the conservative fraction of the nominal
// request limit the agent is allowed to use.
const effectiveRequestFactor = 0.8

// Known providers and tiers, in display order.
var (
	Providers = []string{"claude", "openai", "gemini"}
	Tiers     = []string{"free", "standard", "premium"}
)

type providerTier struct {
	provider string
	tier     string
}

// Sample limit data. Real provider limits change without notice; these
// mirror the published numbers at the time of writing.
var limitTable = map[providerTier]TierLimits{
	{"claude", "free"}:     {RequestsPerMinute: 5, InputTokensPerMinute: 25000, OutputTokensPerMinute: 5000, RequestsPerDay: 300},
	{"claude", "standard"}: {RequestsPerMinute: 50, InputTokensPerMinute: 40000, OutputTokensPerMinute: 8000},
	{"claude", "premium"}:  {RequestsPerMinute: 1000, InputTokensPerMinute: 200000, OutputTokensPerMinute: 40000},

	{"openai", "free"}:     {RequestsPerMinute: 3, InputTokensPerMinute: 40000, OutputTokensPerMinute: 16000, RequestsPerDay: 200},
	{"openai", "standard"}: {RequestsPerMinute: 60, InputTokensPerMinute: 80000, OutputTokensPerMinute: 32000},
	{"openai", "premium"}:  {RequestsPerMinute: 500, InputTokensPerMinute: 800000, OutputTokensPerMinute: 160000},

	{"gemini", "free"}:     {RequestsPerMinute: 15, InputTokensPerMinute: 32000, OutputTokensPerMinute: 8000, RequestsPerDay: 1500},
	{"gemini", "standard"}: {RequestsPerMinute: 360, InputTokensPerMinute: 120000, OutputTokensPerMinute: 30000},
	{"gemini", "premium"}:  {RequestsPerMinute: 2000, InputTokensPerMinute: 4000000, OutputTokensPerMinute: 400000},
}

// Lookup returns the nominal limits for a provider/tier combination.
func Lookup(provider, tier string) (TierLimits, bool) {
	l, ok := limitTable[providerTier{provider, tier}]
	return l, ok
}

// ForConfig returns the effective quotas for the provider and tier named
// by the configuration record. ok is false when the combination is not in
// the table; callers show a placeholder in that case.
func ForConfig(cfg *config.Config) (Effective, bool) {
	provider := ""
	if cfg.LLM != nil {
		provider = cfg.LLM.Type
	}
	eff, ok := For(provider, cfg.CurrentProviderTier)
	if !ok {
		return eff, false
	}

	if cfg.UserOverrides != nil {
		eff = eff.withOverrides(cfg.UserOverrides)
	}
	return eff, true
}

// For returns the effective quotas for a provider/tier combination.
func For(provider, tier string) (Effective, bool) {
	nominal, ok := Lookup(provider, tier)
	if !ok {
		return Effective{Provider: provider, Tier: tier}, false
	}

	return Effective{
		Provider:          provider,
		Tier:              tier,
		Nominal:           nominal,
		EffectiveRequests: int64(float64(nominal.RequestsPerMinute) * effectiveRequestFactor),
	}, true
}

// withOverrides applies the user throttles on top of the table quota.
// Overrides only ever tighten the quota.
func (e Effective) withOverrides(o *config.UserOverrides) Effective {
	if !o.EnableRateLimiting {
		return e
	}
	if o.MaxComponentsPerMinute > 0 && int64(o.MaxComponentsPerMinute) < e.EffectiveRequests {
		e.EffectiveRequests = int64(o.MaxComponentsPerMinute)
	}
	return e
}
