// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayTrace], [DisplayMarkdown], [DisplayTutorTime].
//
//   - Format* functions return a formatted string without performing I/O.
//     They are pure functions suitable for composition.
//     Examples: [FormatStep], [FormatQuietResult], [FormatExecutionDuration].

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/agbru/gcdtutor/internal/euclid"
	"github.com/agbru/gcdtutor/internal/tutor"
	"github.com/agbru/gcdtutor/internal/ui"
)

// MarkdownWidth is the word-wrap column for rendered tutor text.
const MarkdownWidth = 80

// FormatStep renders step i (1-based) without colors, e.g.
// "1. 120 divisé par 45 : Reste 30".
func FormatStep(p tutor.Phrases, i int, s euclid.Step) string {
	line := fmt.Sprintf("%d. %s : %s %d", i, fmt.Sprintf(p.Divides, s.Dividend, s.Divisor), p.Remainder, s.Remainder)
	if s.Remainder == 0 {
		line += " (" + p.ZeroReached + ")"
	}
	return line
}

// FormatQuietResult returns the bare GCD, for scripts.
func FormatQuietResult(tr euclid.Trace) string {
	return strconv.FormatInt(tr.GCD, 10)
}

// DisplayTrace prints the numbered steps and the result banner.
func DisplayTrace(p tutor.Phrases, tr euclid.Trace, out io.Writer) {
	width := len(strconv.Itoa(len(tr.Steps)))
	for i, s := range tr.Steps {
		heading := fmt.Sprintf(p.Divides, s.Dividend, s.Divisor)
		fmt.Fprintf(out, "%s%*d.%s %s\n", ui.ColorDim(), width, i+1, ui.ColorReset(), heading)
		if s.Remainder == 0 {
			fmt.Fprintf(out, "%*s  %s %s%d%s  %s%s%s\n", width, "", p.Remainder,
				ui.ColorGreen(), s.Remainder, ui.ColorReset(),
				ui.ColorGreen(), p.ZeroReached, ui.ColorReset())
			continue
		}
		fmt.Fprintf(out, "%*s  %s %s%d%s\n", width, "", p.Remainder, ui.ColorYellow(), s.Remainder, ui.ColorReset())
	}
	banner := fmt.Sprintf(p.Result, tr.GCD)
	rule := strings.Repeat("─", len([]rune(banner))+4)
	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorCyan(), rule, ui.ColorReset())
	fmt.Fprintf(out, "  %s%s%s\n", ui.ColorBold(), banner, ui.ColorReset())
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorCyan(), rule, ui.ColorReset())
}

// RenderMarkdown renders tutor text for the terminal. Colors follow the
// current theme; when colors are disabled the plain "notty" style is used.
func RenderMarkdown(text string, width int) (string, error) {
	style := glamour.WithAutoStyle()
	if !ui.ColorsEnabled() {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

// DisplayMarkdown writes text rendered as Markdown, falling back to the raw
// text if rendering fails.
func DisplayMarkdown(text string, out io.Writer) {
	rendered, err := RenderMarkdown(text, MarkdownWidth)
	if err != nil {
		fmt.Fprintln(out, text)
		return
	}
	fmt.Fprint(out, rendered)
}

// DisplayTutorTime prints how long the tutor took to answer, dimmed.
func DisplayTutorTime(lang tutor.Lang, d time.Duration, out io.Writer) {
	label := "Réponse du professeur en"
	if lang == tutor.English {
		label = "Tutor answered in"
	}
	fmt.Fprintf(out, "%s%s %s%s\n", ui.ColorDim(), label, FormatExecutionDuration(d), ui.ColorReset())
}
