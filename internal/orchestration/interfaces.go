package orchestration

import (
	"io"

	"github.com/agbru/gcdtutor/internal/euclid"
)

// ProgressIndicator shows that a collaborator call is running. This
// interface decouples the orchestration layer from spinners and status bars.
type ProgressIndicator interface {
	// Start shows the indicator with a status label.
	Start(label string)
	// Stop hides the indicator.
	Stop()
}

// NullProgressIndicator is a no-op implementation of ProgressIndicator.
// Useful for quiet mode or testing.
type NullProgressIndicator struct{}

// Start does nothing.
func (NullProgressIndicator) Start(string) {}

// Stop does nothing.
func (NullProgressIndicator) Stop() {}

// ResultPresenter defines how a lesson is rendered. CLI, REPL and tests
// provide their own implementations.
type ResultPresenter interface {
	// PresentTrace displays the numbered steps and the GCD banner.
	PresentTrace(tr euclid.Trace, out io.Writer)
	// PresentExplanation displays the tutor's explanation.
	PresentExplanation(text string, out io.Writer)
	// PresentMessage displays one transcript entry.
	PresentMessage(msg Message, out io.Writer)
}

// ErrorHandler handles errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, out io.Writer) int
}
