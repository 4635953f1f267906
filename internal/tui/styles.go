package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/gcdtutor/internal/ui"
)

// Style variables for the tutor screen.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle         lipgloss.Style
	focusedPanelStyle  lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	versionStyle       lipgloss.Style
	labelStyle         lipgloss.Style
	stepIndexStyle     lipgloss.Style
	remainderStyle     lipgloss.Style
	zeroStyle          lipgloss.Style
	resultStyle        lipgloss.Style
	userMessageStyle   lipgloss.Style
	fallbackStyle      lipgloss.Style
	placeholderStyle   lipgloss.Style
	statusBusyStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
	statusDoneStyle    lipgloss.Style
	disabledInputStyle lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)

	focusedPanelStyle = panelStyle.
		BorderForeground(t.Accent)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	labelStyle = lipgloss.NewStyle().
		Foreground(t.Info).
		Bold(true)

	stepIndexStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	remainderStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	zeroStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	resultStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(t.Border)

	userMessageStyle = lipgloss.NewStyle().
		Foreground(t.Info)

	fallbackStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Italic(true)

	placeholderStyle = lipgloss.NewStyle().
		Foreground(t.Dim).
		Italic(true)

	statusBusyStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	statusErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	statusDoneStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	disabledInputStyle = lipgloss.NewStyle().
		Foreground(t.Dim)
}
