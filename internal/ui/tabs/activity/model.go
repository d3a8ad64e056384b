// Package activity provides the log and export tab for the Scribe console.
package activity

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/app"
	"github.com/scribe-dev/scribe-console/internal/collector"
	"github.com/scribe-dev/scribe-console/internal/export"
	"github.com/scribe-dev/scribe-console/internal/models"
	"github.com/scribe-dev/scribe-console/internal/services"
	"github.com/scribe-dev/scribe-console/internal/ui/components"
)

// chartWindowHours is the archive window shown in the token chart.
const chartWindowHours = 24

// exportItem indexes the controls in the export modal, top to bottom.
type exportItem int

const (
	itemFormat exportItem = iota
	itemFilename
	itemLogs
	itemAPICalls
	itemRateLimits
	itemConfig
	itemStats
	itemExport
	itemCancel

	exportItemCount
)

var exportFormats = []export.Format{export.FormatJSON, export.FormatText, export.FormatCSV}

// keyMap defines the key bindings specific to the activity tab.
type keyMap struct {
	Export key.Binding
	Clear  key.Binding
	Escape key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear records"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the activity tab state.
type Model struct {
	state    *app.AppState
	commands *app.Commands

	buckets []models.HourlyTokens

	exporting     bool
	exportFocused exportItem
	formatIdx     int
	filename      textinput.Model
	sections      map[exportItem]bool

	confirmClear bool

	spinner components.LoadingSpinner
	keys    keyMap
	width   int
	height  int
}

// New creates a new activity model.
func New(state *app.AppState, mgr *services.Manager) *Model {
	filename := textinput.New()
	filename.Placeholder = "scribe_logs_<timestamp>"
	filename.CharLimit = 80
	filename.Width = 36

	return &Model{
		state:    state,
		commands: app.NewCommands(mgr),
		filename: filename,
		// Stats stay off by default; everything else is included.
		sections: map[exportItem]bool{
			itemLogs:       true,
			itemAPICalls:   true,
			itemRateLimits: true,
			itemConfig:     true,
		},
		spinner: components.NewSpinner("Loading activity..."),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the activity tab.
func (m *Model) Init() tea.Cmd {
	return m.commands.LoadHourlyTokens(chartWindowHours)
}

// Update handles messages for the activity tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if m.exporting {
		return m.updateExportModal(msg)
	}
	if m.confirmClear {
		return m.updateClearConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Export):
			m.openExportModal()
			return m, textinput.Blink

		case key.Matches(msg, m.keys.Clear):
			m.confirmClear = true
		}

	case app.HourlyTokensLoadedMsg:
		if msg.Error == nil {
			m.buckets = msg.Buckets
		}

	case app.RecordsLoadedMsg:
		// New records mean the archive moved; refresh the chart.
		return m, m.commands.LoadHourlyTokens(chartWindowHours)
	}

	return m, nil
}

// openExportModal resets the modal to its default selection.
func (m *Model) openExportModal() {
	m.exporting = true
	m.exportFocused = itemFormat
	m.filename.SetValue("")
	m.filename.Blur()
}

func (m *Model) updateExportModal(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// The filename input owns most keys while focused.
	if m.exportFocused == itemFilename && m.filename.Focused() {
		switch keyMsg.String() {
		case "esc":
			m.filename.Blur()
			return m, nil
		case "enter", "tab", "down":
			m.filename.Blur()
			m.exportFocused++
			return m, nil
		case "shift+tab", "up":
			m.filename.Blur()
			m.exportFocused--
			return m, nil
		}
		var cmd tea.Cmd
		m.filename, cmd = m.filename.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		m.exporting = false
		return m, nil

	case "tab", "down", "j":
		m.exportFocused = (m.exportFocused + 1) % exportItemCount
		return m, m.focusFilenameIfNeeded()

	case "shift+tab", "up", "k":
		m.exportFocused = (m.exportFocused - 1 + exportItemCount) % exportItemCount
		return m, m.focusFilenameIfNeeded()

	case "left", "h":
		if m.exportFocused == itemFormat {
			m.formatIdx = (m.formatIdx - 1 + len(exportFormats)) % len(exportFormats)
		}
		return m, nil

	case "right", "l":
		if m.exportFocused == itemFormat {
			m.formatIdx = (m.formatIdx + 1) % len(exportFormats)
		}
		return m, nil

	case " ":
		m.toggleSection()
		return m, nil

	case "enter":
		switch m.exportFocused {
		case itemFormat:
			m.formatIdx = (m.formatIdx + 1) % len(exportFormats)
			return m, nil
		case itemFilename:
			return m, m.focusFilenameIfNeeded()
		case itemCancel:
			m.exporting = false
			return m, nil
		case itemExport:
			return m.submitExport()
		default:
			m.toggleSection()
			return m, nil
		}
	}

	return m, nil
}

func (m *Model) focusFilenameIfNeeded() tea.Cmd {
	if m.exportFocused == itemFilename {
		m.filename.Focus()
		return textinput.Blink
	}
	return nil
}

func (m *Model) toggleSection() {
	switch m.exportFocused {
	case itemLogs, itemAPICalls, itemRateLimits, itemConfig, itemStats:
		m.sections[m.exportFocused] = !m.sections[m.exportFocused]
	}
}

// selectedSections maps the modal checkboxes onto the export selection.
func (m *Model) selectedSections() collector.Sections {
	return collector.Sections{
		Logs:       m.sections[itemLogs],
		APICalls:   m.sections[itemAPICalls],
		RateLimits: m.sections[itemRateLimits],
		Config:     m.sections[itemConfig],
		Stats:      m.sections[itemStats],
	}
}

// submitExport closes the modal and runs the export with the selected
// format, filename and sections.
func (m *Model) submitExport() (app.Tab, tea.Cmd) {
	m.exporting = false
	sections := m.selectedSections()

	return m, tea.Batch(
		func() tea.Msg { return app.StartLoadingMsg{Resource: "export"} },
		m.commands.Export(sections, exportFormats[m.formatIdx], m.filename.Value()),
	)
}

func (m *Model) updateClearConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.confirmClear = false
		return m, func() tea.Msg {
			return app.ClearRecordsMsg{}
		}
	case "n", "N", "esc":
		m.confirmClear = false
	}
	return m, nil
}

// SetSize sets the available size for the activity tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.exporting {
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next control")),
			key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "toggle section")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Export,
		m.keys.Clear,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Export, m.keys.Clear},
		{m.keys.Escape},
	}
}
