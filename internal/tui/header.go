package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// HeaderModel renders the top bar: title, version and the current activity.
type HeaderModel struct {
	version string
	width   int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{version: version}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header with status right-aligned.
func (h HeaderModel) View(status string) string {
	titleText := "GCD Tutor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	leftPart := titleStyle.Render(titleText) + versionStyle.Render(" | Euclid step by step")

	innerWidth := h.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}

	gap := innerWidth - lipgloss.Width(leftPart) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(h.width).Render(leftPart + spaces(gap) + status)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
