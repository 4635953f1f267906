package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the ANSI codes for line-oriented output. Primary highlights
// operands and the GCD, Secondary dims step numbers and hints, Info colors
// the tutor's messages. NoColorTheme leaves every field empty.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Reset     string
}

var (
	// ChalkboardTheme is the default on dark terminals: chalk colors on a board.
	ChalkboardTheme = Theme{
		Name:      "chalkboard",
		Primary:   "\033[38;5;229m", // Chalk yellow
		Secondary: "\033[38;5;250m", // Light grey
		Success:   "\033[38;5;120m", // Mint
		Warning:   "\033[38;5;215m", // Peach
		Error:     "\033[38;5;203m", // Coral
		Info:      "\033[38;5;117m", // Sky blue
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// NotebookTheme is used on light terminal backgrounds.
	NotebookTheme = Theme{
		Name:      "notebook",
		Primary:   "\033[38;5;25m",  // Ink blue
		Secondary: "\033[38;5;240m", // Pencil grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Red pen
		Info:      "\033[38;5;91m",  // Purple
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// NoColorTheme is selected by --no-color and NO_COLOR.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = ChalkboardTheme
	themeMutex   sync.RWMutex
)

// TUITheme defines lipgloss-compatible colors for the TUI dashboard.
type TUITheme struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// ChalkboardTUITheme adapts to the terminal background.
	ChalkboardTUITheme = TUITheme{
		Text:    lipgloss.AdaptiveColor{Light: "#1F2933", Dark: "#F5F5F0"},
		Border:  lipgloss.AdaptiveColor{Light: "#3E7C59", Dark: "#5FAF87"},
		Accent:  lipgloss.AdaptiveColor{Light: "#1F5FAF", Dark: "#F7E98E"},
		Success: lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#87FFAF"},
		Warning: lipgloss.AdaptiveColor{Light: "#B35C00", Dark: "#FFAF5F"},
		Error:   lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#FF5F5F"},
		Dim:     lipgloss.AdaptiveColor{Light: "#7B8794", Dark: "#808080"},
		Info:    lipgloss.AdaptiveColor{Light: "#6A1B9A", Dark: "#87D7FF"},
	}

	// NoColorTUITheme disables all TUI colors.
	NoColorTUITheme = TUITheme{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
	}
)

// GetCurrentTUITheme returns the lipgloss palette for the dashboard.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	if currentTheme.Name == NoColorTheme.Name {
		return NoColorTUITheme
	}
	return ChalkboardTUITheme
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme; tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// ColorsEnabled reports whether the active theme emits escape codes.
func ColorsEnabled() bool {
	return GetCurrentTheme().Name != NoColorTheme.Name
}

// SetTheme selects "chalkboard", "notebook" or "none" by name, falling back
// to chalkboard.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case NotebookTheme.Name:
		currentTheme = NotebookTheme
	case NoColorTheme.Name:
		currentTheme = NoColorTheme
	default:
		currentTheme = ChalkboardTheme
	}
}

// InitTheme selects the theme from the --no-color flag and the environment.
// NO_COLOR (https://no-color.org/) and a dumb terminal disable colors; a
// light background selects the notebook theme.
func InitTheme(noColor bool) {
	switch {
	case noColor || termenv.EnvNoColor():
		SetTheme(NoColorTheme.Name)
	case !termenv.HasDarkBackground():
		SetTheme(NotebookTheme.Name)
	default:
		SetTheme(ChalkboardTheme.Name)
	}
}
