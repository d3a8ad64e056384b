// Package limits provides the provider limit browser tab.
package limits

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/app"
	"github.com/scribe-dev/scribe-console/internal/limits"
	"github.com/scribe-dev/scribe-console/internal/models"
	"github.com/scribe-dev/scribe-console/internal/services"
	"github.com/scribe-dev/scribe-console/internal/ui/components"
)

// usageWindow is the sliding window used for the live usage gauges.
const usageWindow = time.Minute

// keyMap defines the key bindings specific to the limits tab.
type keyMap struct {
	PrevProvider key.Binding
	NextProvider key.Binding
	PrevTier     key.Binding
	NextTier     key.Binding
	Current      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevProvider: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev provider"),
		),
		NextProvider: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next provider"),
		),
		PrevTier: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev tier"),
		),
		NextTier: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next tier"),
		),
		Current: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "jump to configured"),
		),
	}
}

// Model represents the limits tab state.
type Model struct {
	state    *app.AppState
	commands *app.Commands

	providerIdx int
	tierIdx     int
	hits        []models.ProviderHits

	spinner components.LoadingSpinner
	keys    keyMap
	width   int
	height  int
}

// New creates a new limits model. The selection starts on the configured
// provider and tier when one is known.
func New(state *app.AppState, mgr *services.Manager) *Model {
	m := &Model{
		state:    state,
		commands: app.NewCommands(mgr),
		spinner:  components.NewSpinner("Loading limits..."),
		keys:     defaultKeyMap(),
	}
	m.selectConfigured()
	return m
}

// Init initializes the limits tab.
func (m *Model) Init() tea.Cmd {
	return m.commands.LoadRateLimitHits()
}

// Update handles messages for the limits tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.PrevProvider):
			m.providerIdx = (m.providerIdx - 1 + len(limits.Providers)) % len(limits.Providers)
		case key.Matches(msg, m.keys.NextProvider):
			m.providerIdx = (m.providerIdx + 1) % len(limits.Providers)
		case key.Matches(msg, m.keys.PrevTier):
			m.tierIdx = (m.tierIdx - 1 + len(limits.Tiers)) % len(limits.Tiers)
		case key.Matches(msg, m.keys.NextTier):
			m.tierIdx = (m.tierIdx + 1) % len(limits.Tiers)
		case key.Matches(msg, m.keys.Current):
			m.selectConfigured()
		}

	case app.ConfigLoadedMsg:
		m.selectConfigured()

	case app.RateLimitHitsLoadedMsg:
		if msg.Error == nil {
			m.hits = msg.Hits
		}

	case app.RecordsLoadedMsg:
		// Hit counts live in the archive; refresh them with the records.
		return m, m.commands.LoadRateLimitHits()
	}

	return m, nil
}

// selectConfigured moves the selection to the provider and tier from the
// active configuration, when both are known to the table.
func (m *Model) selectConfigured() {
	provider, tier := m.configuredPair()
	if i := indexOf(limits.Providers, provider); i >= 0 {
		m.providerIdx = i
	}
	if i := indexOf(limits.Tiers, tier); i >= 0 {
		m.tierIdx = i
	}
}

// configuredPair returns the provider and tier named by the active
// configuration, or empty strings when no config is loaded.
func (m *Model) configuredPair() (provider, tier string) {
	cfg := m.state.GetConfig()
	if cfg == nil {
		return "", ""
	}
	if cfg.LLM != nil {
		provider = cfg.LLM.Type
	}
	return provider, cfg.CurrentProviderTier
}

// selected returns the provider and tier currently under the cursor.
func (m *Model) selected() (provider, tier string) {
	return limits.Providers[m.providerIdx], limits.Tiers[m.tierIdx]
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// SetSize sets the available size for the limits tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextProvider,
		m.keys.NextTier,
		m.keys.Current,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevProvider, m.keys.NextProvider},
		{m.keys.PrevTier, m.keys.NextTier},
		{m.keys.Current},
	}
}
