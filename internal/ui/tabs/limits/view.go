package limits

import (
	"fmt"
	"strings"
	"time"

	"github.com/scribe-dev/scribe-console/internal/limits"
	"github.com/scribe-dev/scribe-console/internal/ui/components"
	"github.com/scribe-dev/scribe-console/internal/ui/styles"
)

// View renders the limits tab.
func (m *Model) View() string {
	if m.state.Loading.Initial {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Provider Limits"))
	b.WriteString("\n\n")
	b.WriteString(m.renderMatrix())
	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString("\n")
	b.WriteString(m.renderUsage())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return styles.DocStyle.Render(b.String())
}

// renderMatrix draws the provider-by-tier grid of request quotas. The
// cursor is marked with brackets and the configured pair with a star.
func (m *Model) renderMatrix() string {
	cfgProvider, cfgTier := m.configuredPair()

	var b strings.Builder
	b.WriteString(styles.CardTitleStyle.Render("Requests per Minute (effective)"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%-10s", ""))
	for _, tier := range limits.Tiers {
		b.WriteString(styles.GetTierStyle(tier).Render(fmt.Sprintf("%-12s", tier)))
	}
	b.WriteString("\n")

	for pi, provider := range limits.Providers {
		b.WriteString(styles.GetProviderStyle(provider).Render(fmt.Sprintf("%-10s", provider)))
		for ti, tier := range limits.Tiers {
			cell := "-"
			if eff, ok := limits.For(provider, tier); ok {
				cell = fmt.Sprintf("%d", eff.EffectiveRequests)
			}
			if provider == cfgProvider && tier == cfgTier {
				cell += "*"
			}
			if pi == m.providerIdx && ti == m.tierIdx {
				cell = "[" + cell + "]"
				b.WriteString(styles.FocusedStyle.Render(fmt.Sprintf("%-12s", cell)))
			} else {
				b.WriteString(fmt.Sprintf("%-12s", cell))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.BlurredStyle.Render("* configured combination"))

	return styles.CardStyle.Render(b.String())
}

func (m *Model) renderDetail() string {
	provider, tier := m.selected()

	var b strings.Builder
	title := fmt.Sprintf("%s / %s",
		styles.GetProviderStyle(provider).Render(provider),
		styles.GetTierStyle(tier).Render(tier))
	b.WriteString(styles.CardTitleStyle.Render("Quota Detail"))
	b.WriteString("  ")
	b.WriteString(title)
	b.WriteString("\n")

	eff, ok := limits.For(provider, tier)
	if !ok {
		b.WriteString(styles.BlurredStyle.Render("No limit data for this provider/tier combination."))
		return styles.CardStyle.Render(b.String())
	}

	for _, line := range eff.Describe() {
		b.WriteString(styles.InfoTextStyle.Render(line))
		b.WriteString("\n")
	}

	return styles.CardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderUsage shows live usage gauges for the configured provider,
// computed from recorded API calls in the last minute.
func (m *Model) renderUsage() string {
	var b strings.Builder
	b.WriteString(styles.CardTitleStyle.Render("Current Usage"))
	b.WriteString("\n")

	cfg := m.state.GetConfig()
	if cfg == nil {
		b.WriteString(styles.BlurredStyle.Render("No configuration loaded."))
		return styles.CardStyle.Render(b.String())
	}

	eff, ok := limits.ForConfig(cfg)
	if !ok {
		b.WriteString(styles.BlurredStyle.Render("Configured provider/tier is not in the limit table."))
		return styles.CardStyle.Render(b.String())
	}

	requests, inputTokens, outputTokens := m.recentUsage(eff.Provider)

	barWidth := m.width - 40
	if barWidth < 20 {
		barWidth = 20
	}

	b.WriteString(usageLine("Requests/min", requests, eff.EffectiveRequests, barWidth))
	b.WriteString("\n")
	b.WriteString(usageLine("Input tok/min", inputTokens, eff.Nominal.InputTokensPerMinute, barWidth))
	b.WriteString("\n")
	b.WriteString(usageLine("Output tok/min", outputTokens, eff.Nominal.OutputTokensPerMinute, barWidth))

	if len(m.hits) > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.CardTitleStyle.Render("Rate Limit Hits"))
		b.WriteString("\n")
		for i, h := range m.hits {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styles.GetProviderStyle(h.Provider).Render(fmt.Sprintf("%-10s", h.Provider)))
			b.WriteString(fmt.Sprintf("%d", h.Hits))
		}
	}

	return styles.CardStyle.Render(b.String())
}

// recentUsage totals the recorded API calls for the provider inside the
// usage window.
func (m *Model) recentUsage(provider string) (requests, inputTokens, outputTokens int64) {
	cutoff := time.Now().Add(-usageWindow)
	for _, call := range m.state.GetAPICalls() {
		if call.Provider != provider || call.Timestamp.Before(cutoff) {
			continue
		}
		requests++
		inputTokens += int64(call.InputTokens)
		outputTokens += int64(call.OutputTokens)
	}
	return requests, inputTokens, outputTokens
}

func usageLine(label string, used, limit int64, width int) string {
	percent := 0.0
	if limit > 0 {
		percent = float64(used) / float64(limit) * 100
	}
	if percent > 100 {
		percent = 100
	}
	caption := fmt.Sprintf("%-15s %d / %d", label, used, limit)
	return components.SimpleUsageBar(percent, caption, width)
}

func (m *Model) renderFooter() string {
	shortcuts := []string{
		"←/→ provider",
		"↑/↓ tier",
		"c configured",
	}
	return styles.HelpStyle.Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" • ")))
}
