// Package settings provides the configuration form tab for the Scribe console.
package settings

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/app"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/limits"
	"github.com/scribe-dev/scribe-console/internal/services"
	"github.com/scribe-dev/scribe-console/internal/ui/components"
)

// fieldKind distinguishes how a form field is edited and parsed.
type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindFloat
	kindBool
	kindTier
)

// field indexes into the form. Order is the display order.
const (
	fieldProviderType = iota
	fieldAPIKey
	fieldModel
	fieldTemperature
	fieldMaxTokens
	fieldSearchAttempts
	fieldVerifierRejections
	fieldSleepTime
	fieldOverwrite
	fieldProviderTier
	fieldEnableRateLimiting
	fieldDelayMs
	fieldMaxPerMinute
	fieldEnableBatch
	fieldBatchSize

	fieldCount
)

// fieldSpec describes one bound form field.
type fieldSpec struct {
	label   string
	kind    fieldKind
	section string
}

var formFields = [fieldCount]fieldSpec{
	fieldProviderType:       {"Provider", kindText, "LLM"},
	fieldAPIKey:             {"API Key", kindText, "LLM"},
	fieldModel:              {"Model", kindText, "LLM"},
	fieldTemperature:        {"Temperature", kindFloat, "LLM"},
	fieldMaxTokens:          {"Max Tokens", kindInt, "LLM"},
	fieldSearchAttempts:     {"Reader Search Attempts", kindInt, "Flow Control"},
	fieldVerifierRejections: {"Verifier Rejections", kindInt, "Flow Control"},
	fieldSleepTime:          {"Status Sleep (s)", kindInt, "Flow Control"},
	fieldOverwrite:          {"Overwrite Docstrings", kindBool, "Docstrings"},
	fieldProviderTier:       {"Provider Tier", kindTier, "Rate Limiting"},
	fieldEnableRateLimiting: {"Enable Rate Limiting", kindBool, "Rate Limiting"},
	fieldDelayMs:            {"Delay Between Requests (ms)", kindInt, "Rate Limiting"},
	fieldMaxPerMinute:       {"Max Components / Minute", kindInt, "Rate Limiting"},
	fieldEnableBatch:        {"Enable Batch Processing", kindBool, "Rate Limiting"},
	fieldBatchSize:          {"Batch Size", kindInt, "Rate Limiting"},
}

// keyMap defines the key bindings specific to the settings tab.
type keyMap struct {
	Enter    key.Binding
	Defaults key.Binding
	Save     key.Binding
	Test     key.Binding
	Escape   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit field"),
		),
		Defaults: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "fetch defaults"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Test: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "test API"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the settings tab state.
type Model struct {
	state    *app.AppState
	commands *app.Commands

	inputs  [fieldCount]textinput.Model
	toggles map[int]bool
	tierIdx int

	focused int
	editing bool

	limitLines []string
	spinner    components.LoadingSpinner
	keys       keyMap
	width      int
	height     int
}

// New creates a new settings model.
func New(state *app.AppState, mgr *services.Manager) *Model {
	m := &Model{
		state:    state,
		commands: app.NewCommands(mgr),
		toggles:  make(map[int]bool),
		spinner:  components.NewSpinner("Loading configuration..."),
		keys:     defaultKeyMap(),
	}

	for i := range m.inputs {
		in := textinput.New()
		in.CharLimit = 120
		in.Width = 32
		if i == fieldAPIKey {
			in.Placeholder = "sk-..."
			in.EchoMode = textinput.EchoPassword
		}
		m.inputs[i] = in
	}

	m.ApplyConfig(config.Default())
	return m
}

// Init initializes the settings tab.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// ApplyConfig writes a configuration record into the form fields. Absent
// sections fall back to the documented per-field defaults, and the provider
// limit display is refreshed afterward.
func (m *Model) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.Default()
	}

	llm := cfg.LLM
	if llm == nil {
		llm = config.Default().LLM
	}
	m.inputs[fieldProviderType].SetValue(llm.Type)
	m.inputs[fieldAPIKey].SetValue(llm.APIKey)
	m.inputs[fieldModel].SetValue(llm.Model)
	m.inputs[fieldTemperature].SetValue(strconv.FormatFloat(llm.Temperature, 'g', -1, 64))
	m.inputs[fieldMaxTokens].SetValue(strconv.Itoa(llm.MaxTokens))

	fc := cfg.FlowControl
	if fc == nil {
		fc = config.Default().FlowControl
	}
	m.inputs[fieldSearchAttempts].SetValue(strconv.Itoa(fc.MaxReaderSearchAttempts))
	m.inputs[fieldVerifierRejections].SetValue(strconv.Itoa(fc.MaxVerifierRejections))
	m.inputs[fieldSleepTime].SetValue(strconv.Itoa(fc.StatusSleepTime))

	do := cfg.DocstringOptions
	if do == nil {
		do = config.Default().DocstringOptions
	}
	m.toggles[fieldOverwrite] = do.OverwriteDocstrings

	tier := cfg.CurrentProviderTier
	if tier == "" {
		tier = config.DefaultProviderTier
	}
	m.tierIdx = 0
	for i, t := range limits.Tiers {
		if t == tier {
			m.tierIdx = i
			break
		}
	}

	uo := cfg.UserOverrides
	if uo == nil {
		uo = config.Default().UserOverrides
	}
	m.toggles[fieldEnableRateLimiting] = uo.EnableRateLimiting
	m.inputs[fieldDelayMs].SetValue(strconv.Itoa(uo.DelayBetweenRequestsMs))
	m.inputs[fieldMaxPerMinute].SetValue(strconv.Itoa(uo.MaxComponentsPerMinute))
	m.toggles[fieldEnableBatch] = uo.EnableBatchProcessing
	m.inputs[fieldBatchSize].SetValue(strconv.Itoa(uo.BatchSize))

	m.refreshLimits()
}

// BuildConfig reads the form back into a configuration record. Numeric
// fields that fail to parse fall back to their documented defaults.
func (m *Model) BuildConfig() *config.Config {
	return &config.Config{
		LLM: &config.LLMConfig{
			Type:        m.inputs[fieldProviderType].Value(),
			APIKey:      m.inputs[fieldAPIKey].Value(),
			Model:       m.inputs[fieldModel].Value(),
			Temperature: parseFloatOr(m.inputs[fieldTemperature].Value(), config.DefaultTemperature),
			MaxTokens:   parseIntOr(m.inputs[fieldMaxTokens].Value(), config.DefaultMaxTokens),
		},
		FlowControl: &config.FlowControl{
			MaxReaderSearchAttempts: parseIntOr(m.inputs[fieldSearchAttempts].Value(), config.DefaultMaxReaderSearchAttempts),
			MaxVerifierRejections:   parseIntOr(m.inputs[fieldVerifierRejections].Value(), config.DefaultMaxVerifierRejections),
			StatusSleepTime:         parseIntOr(m.inputs[fieldSleepTime].Value(), config.DefaultStatusSleepTime),
		},
		DocstringOptions: &config.DocstringOptions{
			OverwriteDocstrings: m.toggles[fieldOverwrite],
		},
		CurrentProviderTier: limits.Tiers[m.tierIdx],
		UserOverrides: &config.UserOverrides{
			EnableRateLimiting:     m.toggles[fieldEnableRateLimiting],
			DelayBetweenRequestsMs: parseIntOr(m.inputs[fieldDelayMs].Value(), config.DefaultDelayBetweenRequestsMs),
			MaxComponentsPerMinute: parseIntOr(m.inputs[fieldMaxPerMinute].Value(), config.DefaultMaxComponentsPerMinute),
			EnableBatchProcessing:  m.toggles[fieldEnableBatch],
			BatchSize:              parseIntOr(m.inputs[fieldBatchSize].Value(), config.DefaultBatchSize),
		},
	}
}

// refreshLimits recomputes the provider limit display from the current
// form values.
func (m *Model) refreshLimits() {
	eff, ok := limits.ForConfig(m.BuildConfig())
	if !ok {
		m.limitLines = nil
		return
	}
	m.limitLines = eff.Describe()
}

// Update handles messages for the settings tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNavigation(msg)

	case app.ConfigLoadedMsg:
		m.ApplyConfig(msg.Config)

	case app.DefaultsFetchedMsg:
		// On fetch failure the form keeps whatever the user had.
		if msg.Error == nil {
			m.ApplyConfig(msg.Config)
		}
	}

	return m, nil
}

func (m *Model) updateNavigation(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Defaults):
		return m, tea.Batch(
			func() tea.Msg { return app.StartLoadingMsg{Resource: "config"} },
			m.commands.FetchDefaults(),
		)

	case key.Matches(msg, m.keys.Save):
		return m, m.commands.SaveConfig(m.BuildConfig())

	case key.Matches(msg, m.keys.Test):
		return m, tea.Batch(
			func() tea.Msg { return app.StartLoadingMsg{Resource: "test"} },
			m.commands.TestAPI(m.BuildConfig()),
		)

	case key.Matches(msg, m.keys.Enter):
		return m.activateField()
	}

	switch msg.String() {
	case "up", "k":
		m.focused = (m.focused - 1 + fieldCount) % fieldCount
	case "down", "j":
		m.focused = (m.focused + 1) % fieldCount
	case " ":
		return m.activateField()
	}

	return m, nil
}

// activateField toggles a boolean, cycles the tier, or enters edit mode
// for a text field.
func (m *Model) activateField() (app.Tab, tea.Cmd) {
	switch formFields[m.focused].kind {
	case kindBool:
		m.toggles[m.focused] = !m.toggles[m.focused]
		m.refreshLimits()
		return m, nil

	case kindTier:
		m.tierIdx = (m.tierIdx + 1) % len(limits.Tiers)
		m.refreshLimits()
		return m, nil

	default:
		m.editing = true
		m.inputs[m.focused].Focus()
		m.inputs[m.focused].CursorEnd()
		return m, textinput.Blink
	}
}

func (m *Model) updateEditing(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.editing = false
		m.inputs[m.focused].Blur()
		m.refreshLimits()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

// SetSize sets the available size for the settings tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inputWidth := width/2 - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	if inputWidth > 48 {
		inputWidth = 48
	}
	for i := range m.inputs {
		m.inputs[i].Width = inputWidth
	}
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Enter,
		m.keys.Defaults,
		m.keys.Save,
		m.keys.Test,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Enter, m.keys.Escape},
		{m.keys.Defaults, m.keys.Save, m.keys.Test},
	}
}

func parseIntOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseFloatOr(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// fieldValue renders a field's current value for display.
func (m *Model) fieldValue(i int) string {
	switch formFields[i].kind {
	case kindBool:
		if m.toggles[i] {
			return "[x] enabled"
		}
		return "[ ] disabled"
	case kindTier:
		return limits.Tiers[m.tierIdx]
	default:
		if i == fieldAPIKey {
			if m.inputs[i].Value() == "" {
				return "(not set)"
			}
			return "***"
		}
		v := m.inputs[i].Value()
		if v == "" {
			return "(empty)"
		}
		return v
	}
}

// sectionStart reports whether field i opens a new form section.
func sectionStart(i int) bool {
	return i == 0 || formFields[i].section != formFields[i-1].section
}

func fieldLabel(i int) string {
	return fmt.Sprintf("%-28s", formFields[i].label+":")
}
