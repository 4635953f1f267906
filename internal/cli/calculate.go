package cli

import (
	"fmt"
	"io"

	"github.com/agbru/gcdtutor/internal/config"
	"github.com/agbru/gcdtutor/internal/tutor"
	"github.com/agbru/gcdtutor/internal/ui"
)

// PrintExecutionConfig displays the operands and the tutor settings of a
// one-shot run.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Euclidean algorithm ---\n")
	fmt.Fprintf(out, "Operands: %s%s%s and %s%s%s.\n",
		ui.ColorPrimary(), cfg.A, ui.ColorReset(), ui.ColorPrimary(), cfg.B, ui.ColorReset())
	if cfg.Explain {
		fmt.Fprintf(out, "Tutor: %s%s%s (%s), timeout %s%s%s.\n",
			ui.ColorCyan(), cfg.Model, ui.ColorReset(), cfg.Lang,
			ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	} else {
		fmt.Fprintf(out, "Tutor: %sdisabled%s.\n", ui.ColorDim(), ui.ColorReset())
	}
	fmt.Fprintln(out)
}

// ProgressLabel returns the spinner label for lang.
func ProgressLabel(lang tutor.Lang) string {
	if lang == tutor.English {
		return "The tutor is thinking..."
	}
	return "Le professeur réfléchit..."
}

// SpeechLabel returns the spinner label shown while the explanation is read.
func SpeechLabel(lang tutor.Lang) string {
	if lang == tutor.English {
		return "Reading aloud..."
	}
	return "Lecture en cours..."
}
