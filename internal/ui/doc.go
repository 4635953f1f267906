// Package ui picks the color palette for the terminal front ends: ANSI codes
// for the CLI and the REPL, lipgloss colors for the TUI.
package ui
