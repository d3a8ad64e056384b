package activity

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/app"
	"github.com/scribe-dev/scribe-console/internal/export"
	"github.com/scribe-dev/scribe-console/internal/models"
)

func newTestModel() *Model {
	state := app.NewAppState()
	state.SetLoading("initial", false)
	m := New(state, nil)
	m.SetSize(100, 40)
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNew(t *testing.T) {
	m := newTestModel()

	if m.exporting {
		t.Error("expected export modal to start closed")
	}
	if m.confirmClear {
		t.Error("expected clear confirmation to start closed")
	}
	for _, item := range []exportItem{itemLogs, itemAPICalls, itemRateLimits, itemConfig} {
		if !m.sections[item] {
			t.Errorf("expected section %d to start selected", item)
		}
	}
	if m.sections[itemStats] {
		t.Error("expected stats section to start unselected")
	}
}

func TestModel_Init(t *testing.T) {
	m := newTestModel()
	if cmd := m.Init(); cmd == nil {
		t.Error("expected Init to return a command")
	}
}

func TestModel_Update_OpenAndCloseExportModal(t *testing.T) {
	m := newTestModel()

	tab, _ := m.Update(keyMsg("e"))
	m = tab.(*Model)
	if !m.exporting {
		t.Fatal("expected export modal to open on e")
	}

	tab, _ = m.Update(keyMsg("esc"))
	m = tab.(*Model)
	if m.exporting {
		t.Error("expected esc to close the export modal")
	}
}

func TestModel_Update_ExportModalControls(t *testing.T) {
	m := newTestModel()
	tab, _ := m.Update(keyMsg("e"))
	m = tab.(*Model)

	if m.exportFocused != itemFormat {
		t.Fatalf("expected focus on format, got %d", m.exportFocused)
	}

	// Cycling the format selector.
	tab, _ = m.Update(keyMsg("right"))
	m = tab.(*Model)
	if got := exportFormats[m.formatIdx]; got != export.FormatText {
		t.Errorf("expected text format after right, got %s", got)
	}
	tab, _ = m.Update(keyMsg("left"))
	m = tab.(*Model)
	if got := exportFormats[m.formatIdx]; got != export.FormatJSON {
		t.Errorf("expected json format after left, got %s", got)
	}

	// Tab to filename, then past it to the logs checkbox.
	tab, _ = m.Update(keyMsg("tab"))
	m = tab.(*Model)
	if m.exportFocused != itemFilename {
		t.Fatalf("expected focus on filename, got %d", m.exportFocused)
	}
	if !m.filename.Focused() {
		t.Error("expected filename input to take focus")
	}
	tab, _ = m.Update(keyMsg("tab"))
	m = tab.(*Model)
	if m.exportFocused != itemLogs {
		t.Fatalf("expected focus on logs checkbox, got %d", m.exportFocused)
	}

	// Space toggles the focused section.
	tab, _ = m.Update(keyMsg(" "))
	m = tab.(*Model)
	if m.sections[itemLogs] {
		t.Error("expected logs section to toggle off")
	}
	tab, _ = m.Update(keyMsg(" "))
	m = tab.(*Model)
	if !m.sections[itemLogs] {
		t.Error("expected logs section to toggle back on")
	}
}

func TestModel_ConfigSectionTogglesIndependently(t *testing.T) {
	m := newTestModel()
	tab, _ := m.Update(keyMsg("e"))
	m = tab.(*Model)

	// Config on with stats off, then the other way around.
	got := m.selectedSections()
	if !got.Config || got.Stats {
		t.Errorf("sections = %+v, want config without stats", got)
	}

	m.exportFocused = itemConfig
	tab, _ = m.Update(keyMsg(" "))
	m = tab.(*Model)
	m.exportFocused = itemStats
	tab, _ = m.Update(keyMsg(" "))
	m = tab.(*Model)

	got = m.selectedSections()
	if got.Config || !got.Stats {
		t.Errorf("sections = %+v, want stats without config", got)
	}
}

func TestModel_Update_SubmitExport(t *testing.T) {
	m := newTestModel()
	tab, _ := m.Update(keyMsg("e"))
	m = tab.(*Model)

	m.exportFocused = itemExport
	tab, cmd := m.Update(keyMsg("enter"))
	m = tab.(*Model)

	if m.exporting {
		t.Error("expected export modal to close on submit")
	}
	if cmd == nil {
		t.Error("expected submit to return an export command")
	}
}

func TestModel_Update_CancelButton(t *testing.T) {
	m := newTestModel()
	tab, _ := m.Update(keyMsg("e"))
	m = tab.(*Model)

	m.exportFocused = itemCancel
	tab, cmd := m.Update(keyMsg("enter"))
	m = tab.(*Model)

	if m.exporting {
		t.Error("expected cancel button to close the modal")
	}
	if cmd != nil {
		t.Error("expected no command from cancel")
	}
}

func TestModel_Update_ClearConfirm(t *testing.T) {
	m := newTestModel()

	tab, _ := m.Update(keyMsg("x"))
	m = tab.(*Model)
	if !m.confirmClear {
		t.Fatal("expected x to ask for confirmation")
	}

	tab, cmd := m.Update(keyMsg("n"))
	m = tab.(*Model)
	if m.confirmClear {
		t.Error("expected n to cancel the confirmation")
	}
	if cmd != nil {
		t.Error("expected no command when cancelling")
	}

	tab, _ = m.Update(keyMsg("x"))
	m = tab.(*Model)
	tab, cmd = m.Update(keyMsg("y"))
	m = tab.(*Model)
	if m.confirmClear {
		t.Error("expected y to close the confirmation")
	}
	if cmd == nil {
		t.Fatal("expected y to return a command")
	}
	if _, ok := cmd().(app.ClearRecordsMsg); !ok {
		t.Error("expected confirmation to request a record clear")
	}
}

func TestModel_Update_HourlyTokens(t *testing.T) {
	m := newTestModel()

	buckets := []models.HourlyTokens{
		{Hour: time.Now().Truncate(time.Hour), Calls: 3, InputTokens: 120, OutputTokens: 500},
	}
	tab, _ := m.Update(app.HourlyTokensLoadedMsg{Buckets: buckets})
	m = tab.(*Model)
	if len(m.buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(m.buckets))
	}

	// A failed load keeps the previous data.
	tab, _ = m.Update(app.HourlyTokensLoadedMsg{Error: errors.New("db closed")})
	m = tab.(*Model)
	if len(m.buckets) != 1 {
		t.Errorf("expected buckets to survive a failed load, got %d", len(m.buckets))
	}
}

func TestModel_Update_RecordsLoadedRefreshesChart(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(app.RecordsLoadedMsg{})
	if cmd == nil {
		t.Error("expected a chart refresh command after records load")
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel()
	m.state.SetRecords(
		models.RunStats{TotalComponents: 4, ProcessedComponents: 2, Warnings: 1},
		[]models.LogEntry{
			{Timestamp: time.Now(), Level: models.LevelWarning, Message: "rate limit hit for claude"},
		},
		nil, nil,
	)

	view := m.View()
	for _, want := range []string{"Activity", "Run Stats", "Recent Logs", "rate limit hit for claude"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestModel_View_ExportModal(t *testing.T) {
	m := newTestModel()
	tab, _ := m.Update(keyMsg("e"))
	m = tab.(*Model)

	view := m.View()
	for _, want := range []string{"Export Records", "Format", "Sections", "Logs", "Config", "Stats"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected export modal to contain %q", want)
		}
	}
}

func TestModel_View_ClearConfirm(t *testing.T) {
	m := newTestModel()
	tab, _ := m.Update(keyMsg("x"))
	m = tab.(*Model)

	if !strings.Contains(m.View(), "Clear all collected records?") {
		t.Error("expected the confirmation prompt to render")
	}
}

func TestModel_Help(t *testing.T) {
	m := newTestModel()
	if len(m.ShortHelp()) == 0 {
		t.Error("expected short help bindings")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("expected full help bindings")
	}

	tab, _ := m.Update(keyMsg("e"))
	m = tab.(*Model)
	if len(m.ShortHelp()) == 0 {
		t.Error("expected short help bindings while exporting")
	}
}
