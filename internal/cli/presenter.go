package cli

import (
	"errors"
	"fmt"
	"io"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/euclid"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/tutor"
	"github.com/agbru/gcdtutor/internal/ui"
)

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output. Phrases selects the language of the step labels.
type CLIResultPresenter struct {
	Phrases tutor.Phrases
	// Quiet prints only the GCD and suppresses the tutor text.
	Quiet bool
}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentTrace displays the steps and the result banner.
func (p CLIResultPresenter) PresentTrace(tr euclid.Trace, out io.Writer) {
	if p.Quiet {
		fmt.Fprintln(out, FormatQuietResult(tr))
		return
	}
	DisplayTrace(p.Phrases, tr, out)
}

// PresentExplanation renders the explanation as Markdown.
func (p CLIResultPresenter) PresentExplanation(text string, out io.Writer) {
	if p.Quiet || text == "" {
		return
	}
	fmt.Fprintln(out)
	DisplayMarkdown(text, out)
}

// PresentMessage renders one transcript entry. Tutor replies are rendered as
// Markdown; the canned apology is shown in the warning color.
func (p CLIResultPresenter) PresentMessage(msg orchestration.Message, out io.Writer) {
	switch {
	case msg.Role == orchestration.RoleUser:
		fmt.Fprintf(out, "%s> %s%s\n", ui.ColorDim(), msg.Text, ui.ColorReset())
	case msg.Fallback:
		fmt.Fprintf(out, "%s%s%s\n", ui.ColorYellow(), msg.Text, ui.ColorReset())
	default:
		DisplayMarkdown(msg.Text, out)
	}
}

// HandleError prints err and returns the matching exit code. Validation
// errors are shown with the localized invalid-input sentence.
func (p CLIResultPresenter) HandleError(err error, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	var valErr apperrors.ValidationError
	var collabErr apperrors.CollaboratorError
	switch {
	case errors.As(err, &valErr):
		fmt.Fprintf(out, "%s%s%s (%s)\n", ui.ColorRed(), p.Phrases.InvalidInput, ui.ColorReset(), valErr.Message)
	case errors.As(err, &collabErr):
		fmt.Fprintf(out, "%s%v%s\n", ui.ColorRed(), collabErr, ui.ColorReset())
	case apperrors.IsContextError(err):
		fmt.Fprintf(out, "%sOperation interrupted: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
	return apperrors.ExitCodeFor(err)
}
