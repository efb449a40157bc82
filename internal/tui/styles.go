package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mcsim/internal/ui"
)

// Dashboard styles, rebuilt from the active ui theme by initTUIStyles.
var (
	panelStyle       lipgloss.Style
	panelTitleStyle  lipgloss.Style
	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	dimStyle         lipgloss.Style
	nameStyle        lipgloss.Style
	barStyle         lipgloss.Style
	gainStyle        lipgloss.Style
	lossStyle        lipgloss.Style
	warningStyle     lipgloss.Style
	metricLabelStyle lipgloss.Style
	metricValueStyle lipgloss.Style
	cpuStyle         lipgloss.Style
	memStyle         lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds the styles; Run calls it after ui.InitTheme.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)
	panelTitleStyle = fg(t.Accent).Bold(true)
	headerStyle = fg(t.Accent).Bold(true).Padding(0, 1)
	titleStyle = fg(t.Accent).Bold(true)
	dimStyle = fg(t.Dim)
	nameStyle = fg(t.Text).Bold(true)
	barStyle = fg(t.Accent)
	gainStyle = fg(t.Gain)
	lossStyle = fg(t.Loss)
	warningStyle = fg(t.Warning).Bold(true)
	metricLabelStyle = fg(t.Dim)
	metricValueStyle = fg(t.Accent).Bold(true)
	cpuStyle = fg(t.Accent)
	memStyle = fg(t.Warning)
}
