package activity

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/scribe-dev/scribe-console/internal/models"
	"github.com/scribe-dev/scribe-console/internal/ui/components"
	"github.com/scribe-dev/scribe-console/internal/ui/styles"
)

// maxVisibleLogs caps the log list so the tab stays within one screen.
const maxVisibleLogs = 12

// View renders the activity tab.
func (m *Model) View() string {
	if m.state.Loading.Initial || m.state.Loading.Records {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	if m.exporting {
		return m.renderExportModal()
	}
	if m.confirmClear {
		return m.renderClearConfirm()
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(m.renderChart())
	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return styles.DocStyle.Render(b.String())
}

func (m *Model) renderTitle() string {
	return styles.TitleStyle.Render("Activity")
}

func (m *Model) renderStats() string {
	stats := m.state.GetStats()
	logs, apiCalls, rateLimits := m.state.RecordCounts()

	line1 := fmt.Sprintf("Components: %d/%d processed   Errors: %d   Warnings: %d",
		stats.ProcessedComponents, stats.TotalComponents, stats.Errors, stats.Warnings)
	line2 := fmt.Sprintf("Records: %d logs, %d API calls, %d rate limit events",
		logs, apiCalls, rateLimits)

	content := styles.CardTitleStyle.Render("Run Stats") + "\n" +
		styles.InfoTextStyle.Render(line1) + "\n" +
		styles.InfoTextStyle.Render(line2)

	return styles.CardStyle.Render(content)
}

func (m *Model) renderChart() string {
	if len(m.buckets) == 0 {
		content := styles.CardTitleStyle.Render("Token Usage") + "\n" +
			styles.BlurredStyle.Render("No token usage recorded yet.")
		return styles.CardStyle.Render(content)
	}

	input := make([]float64, len(m.buckets))
	output := make([]float64, len(m.buckets))
	for i, b := range m.buckets {
		input[i] = float64(b.InputTokens)
		output[i] = float64(b.OutputTokens)
	}

	chartWidth := m.width - 12
	if chartWidth < 20 {
		chartWidth = 20
	}

	chart := components.RenderDualLineChart(input, output, chartWidth, 6,
		fmt.Sprintf("Tokens per hour (last %dh)", chartWindowHours))

	return styles.CardStyle.Render(
		styles.CardTitleStyle.Render("Token Usage") + "\n" + chart)
}

func (m *Model) renderLogs() string {
	entries := m.state.GetLogs()

	var b strings.Builder
	b.WriteString(styles.CardTitleStyle.Render("Recent Logs"))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(styles.BlurredStyle.Render("No log entries yet."))
		return styles.CardStyle.Render(b.String())
	}

	// Newest entries last; show the tail of the list.
	start := 0
	if len(entries) > maxVisibleLogs {
		start = len(entries) - maxVisibleLogs
	}
	for _, entry := range entries[start:] {
		b.WriteString(m.renderLogLine(entry))
		b.WriteString("\n")
	}
	if start > 0 {
		b.WriteString(styles.BlurredStyle.Render(fmt.Sprintf("... and %d older entries", start)))
	}

	return styles.CardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderLogLine(entry models.LogEntry) string {
	level := styles.GetLevelStyle(string(entry.Level)).Render(fmt.Sprintf("%-7s", entry.Level))
	ts := styles.BlurredStyle.Render(entry.Timestamp.Format("15:04:05"))
	line := fmt.Sprintf("%s %s %s", ts, level, entry.Message)
	if entry.Detail != "" {
		line += styles.BlurredStyle.Render(" (" + entry.Detail + ")")
	}
	return line
}

func (m *Model) renderFooter() string {
	shortcuts := []string{
		"e export",
		"x clear records",
		"r refresh",
	}
	return styles.HelpStyle.Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" • ")))
}

func (m *Model) renderExportModal() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Export Records"))
	b.WriteString("\n\n")

	b.WriteString(m.renderModalRow(itemFormat, "Format",
		fmt.Sprintf("< %s >", exportFormats[m.formatIdx])))
	b.WriteString("\n")

	filenameView := m.filename.View()
	if !m.filename.Focused() && m.filename.Value() == "" {
		filenameView = styles.BlurredStyle.Render("(auto timestamped)")
	}
	b.WriteString(m.renderModalRow(itemFilename, "Filename", filenameView))
	b.WriteString("\n\n")

	b.WriteString(styles.CardTitleStyle.Render("Sections"))
	b.WriteString("\n")
	b.WriteString(m.renderModalRow(itemLogs, "Logs", m.checkbox(itemLogs)))
	b.WriteString("\n")
	b.WriteString(m.renderModalRow(itemAPICalls, "API Calls", m.checkbox(itemAPICalls)))
	b.WriteString("\n")
	b.WriteString(m.renderModalRow(itemRateLimits, "Rate Limits", m.checkbox(itemRateLimits)))
	b.WriteString("\n")
	b.WriteString(m.renderModalRow(itemConfig, "Config", m.checkbox(itemConfig)))
	b.WriteString("\n")
	b.WriteString(m.renderModalRow(itemStats, "Stats", m.checkbox(itemStats)))
	b.WriteString("\n\n")

	exportBtn := styles.ButtonInactiveStyle.Render("[ Export ]")
	if m.exportFocused == itemExport {
		exportBtn = styles.ButtonActiveStyle.Render("[ Export ]")
	}
	cancelBtn := styles.ButtonInactiveStyle.Render("[ Cancel ]")
	if m.exportFocused == itemCancel {
		cancelBtn = styles.ButtonActiveStyle.Render("[ Cancel ]")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, exportBtn, "  ", cancelBtn))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("tab next • space toggle • enter select • esc cancel"))

	return styles.DocStyle.Render(styles.ModalContentStyle.Render(b.String()))
}

func (m *Model) renderModalRow(item exportItem, label, value string) string {
	marker := "  "
	labelStyle := styles.BlurredStyle
	if m.exportFocused == item {
		marker = "> "
		labelStyle = styles.FocusedStyle
	}
	return marker + labelStyle.Render(fmt.Sprintf("%-12s", label)) + " " + value
}

func (m *Model) checkbox(item exportItem) string {
	if m.sections[item] {
		return "[x]"
	}
	return "[ ]"
}

func (m *Model) renderClearConfirm() string {
	logs, apiCalls, rateLimits := m.state.RecordCounts()

	var b strings.Builder
	b.WriteString(styles.WarningTextStyle.Render("Clear all collected records?"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("This removes %d logs, %d API calls and %d rate limit events.",
		logs, apiCalls, rateLimits))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("y confirm • n cancel"))

	return styles.DocStyle.Render(styles.ModalContentStyle.Render(b.String()))
}
