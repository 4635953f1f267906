package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/gcdtutor/internal/cli"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/tutor"
)

// labels holds the screen's own captions for one language.
type labels struct {
	steps           string
	tutor           string
	start           string
	chatPlaceholder string
	chatDisabled    string
}

func labelsFor(lang tutor.Lang) labels {
	if lang == tutor.English {
		return labels{
			steps:           "Steps",
			tutor:           "Tutor",
			start:           "Enter two positive integers and press enter.",
			chatPlaceholder: "Ask a question about this calculation...",
			chatDisabled:    "Chat available after a calculation.",
		}
	}
	return labels{
		steps:           "Étapes",
		tutor:           "Professeur",
		start:           "Entrez deux entiers positifs puis appuyez sur Entrée.",
		chatPlaceholder: "Pose une question sur ce calcul...",
		chatDisabled:    "Le chat sera disponible après un calcul.",
	}
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	header := m.header.View(m.resultBadge())
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.stepsView(m.stepsWidth(), m.bodyHeight()),
		m.tutorPanel(m.tutorWidth(), m.bodyHeight()))

	km := m.keymap
	km.Speak.SetEnabled(m.snap.CanSpeak())
	footer := m.help.View(km)

	return lipgloss.JoinVertical(lipgloss.Left,
		header, m.operandsView(), body, m.chatView(), m.statusView(), footer)
}

func (m Model) resultBadge() string {
	if m.snap.Trace == nil {
		return ""
	}
	return titleStyle.Render(fmt.Sprintf(m.phrases.Result, m.snap.Trace.GCD))
}

func (m Model) panel(focused bool) lipgloss.Style {
	if focused {
		return focusedPanelStyle
	}
	return panelStyle
}

func (m Model) operandsView() string {
	row := labelStyle.Render("a ") + m.inputs[fieldA].View() + "   " +
		labelStyle.Render("b ") + m.inputs[fieldB].View()
	return m.panel(m.focus != fieldChat).Width(max(m.width-2, 0)).Render(row)
}

// stepsView renders the numbered steps and the result line, truncated to
// the panel height.
func (m Model) stepsView(width, height int) string {
	inner := max(height-2, 1)
	lines := []string{labelStyle.Render(m.labels.steps)}
	var result string
	if m.snap.Trace == nil {
		lines = append(lines, placeholderStyle.Render(m.labels.start))
	} else {
		for i, s := range m.snap.Trace.Steps {
			heading := stepIndexStyle.Render(fmt.Sprintf("%d.", i+1)) + " " + fmt.Sprintf(m.phrases.Divides, s.Dividend, s.Divisor)
			lines = append(lines, heading)
			if s.Remainder == 0 {
				lines = append(lines, "   "+zeroStyle.Render(fmt.Sprintf("%s 0 · %s", m.phrases.Remainder, m.phrases.ZeroReached)))
			} else {
				lines = append(lines, "   "+remainderStyle.Render(fmt.Sprintf("%s %d", m.phrases.Remainder, s.Remainder)))
			}
		}
		result = resultStyle.Render(fmt.Sprintf(m.phrases.Result, m.snap.Trace.GCD))
	}

	room := inner
	if result != "" {
		room -= lipgloss.Height(result)
	}
	if len(lines) > room && room > 1 {
		lines = append(lines[:room-1], stepIndexStyle.Render("…"))
	}
	content := strings.Join(lines, "\n")
	if result != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, result)
	}
	return panelStyle.Width(max(width-2, 0)).Height(inner).Render(content)
}

func (m Model) tutorPanel(width, height int) string {
	return panelStyle.Width(max(width-2, 0)).Height(max(height-2, 1)).Render(m.tutorView.View())
}

func (m Model) chatView() string {
	var row string
	if m.snap.CanAsk() {
		row = m.inputs[fieldChat].View()
	} else {
		row = disabledInputStyle.Render(m.labels.chatDisabled)
		if m.snap.ChatPending {
			row = disabledInputStyle.Render(cli.ProgressLabel(m.lang))
		}
	}
	return m.panel(m.focus == fieldChat).Width(max(m.width-2, 0)).Render("› " + row)
}

func (m Model) statusView() string {
	switch {
	case m.failed:
		return statusErrorStyle.Render(m.status)
	case m.busy():
		return m.spinner.View() + " " + statusBusyStyle.Render(m.status)
	default:
		return statusDoneStyle.Render(m.status)
	}
}

// refreshTutorView rebuilds the explanation and transcript shown in the
// tutor panel from the current snapshot.
func (m *Model) refreshTutorView() {
	var b strings.Builder
	b.WriteString(labelStyle.Render(m.labels.tutor))
	b.WriteString("\n")
	switch {
	case m.snap.Trace == nil:
		b.WriteString(placeholderStyle.Render(m.labels.start))
	case m.snap.Loading:
		b.WriteString(placeholderStyle.Render(cli.ProgressLabel(m.lang)))
	default:
		b.WriteString(m.markdown(m.snap.Explanation))
	}
	for _, msg := range m.snap.Transcript {
		b.WriteString("\n\n")
		b.WriteString(m.renderMessage(msg))
	}
	m.tutorView.SetContent(b.String())
	if len(m.snap.Transcript) > 0 {
		m.tutorView.GotoBottom()
	} else {
		m.tutorView.GotoTop()
	}
}

func (m Model) renderMessage(msg orchestration.Message) string {
	switch {
	case msg.Role == orchestration.RoleUser:
		return userMessageStyle.Render("› " + msg.Text)
	case msg.Fallback:
		return fallbackStyle.Render(msg.Text)
	default:
		return m.markdown(msg.Text)
	}
}

func (m Model) markdown(text string) string {
	out, err := cli.RenderMarkdown(text, max(m.tutorView.Width-2, 20))
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
