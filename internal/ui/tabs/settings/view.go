package settings

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/scribe-dev/scribe-console/internal/ui/components"
	"github.com/scribe-dev/scribe-console/internal/ui/styles"
)

// View renders the settings tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderForm())
	sections = append(sections, m.renderLimits())
	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Generation Settings")
	subtitle := styles.HelpStyle.Render("Provider, pacing and output options for the docstring agent")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderForm renders the bound configuration fields grouped by section.
func (m *Model) renderForm() string {
	var rows []string

	for i := 0; i < fieldCount; i++ {
		if sectionStart(i) {
			if i > 0 {
				rows = append(rows, "")
			}
			rows = append(rows, styles.CardTitleStyle.Render(formFields[i].section))
		}

		marker := "  "
		labelStyle := styles.BlurredStyle
		if i == m.focused {
			marker = "> "
			labelStyle = styles.FocusedStyle
		}

		var value string
		if m.editing && i == m.focused {
			value = m.inputs[i].View()
		} else {
			value = m.fieldValue(i)
		}

		rows = append(rows, marker+labelStyle.Render(fieldLabel(i))+value)
	}

	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderLimits renders the derived provider limit display.
func (m *Model) renderLimits() string {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}

	rows := []string{styles.CardTitleStyle.Render("Provider Limits")}

	if len(m.limitLines) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No limit data for this provider/tier combination."))
	} else {
		for _, line := range m.limitLines {
			rows = append(rows, styles.InfoTextStyle.Render(line))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderFooter() string {
	var shortcuts []string

	if m.editing {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " done",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	} else {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("↑/↓") + " field",
			styles.HelpKeyStyle.Render("Enter") + " edit/toggle",
			styles.HelpKeyStyle.Render("d") + " defaults",
			styles.HelpKeyStyle.Render("s") + " save",
			styles.HelpKeyStyle.Render("t") + " test API",
		}
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
