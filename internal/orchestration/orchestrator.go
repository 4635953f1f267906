package orchestration

import (
	"context"
	"io"
)

// LessonOptions configures RunLesson.
type LessonOptions struct {
	// Explain requests the explanation and chat after the trace is shown.
	Explain bool
	// ProgressLabel is shown by the indicator while the tutor works.
	ProgressLabel string
}

// RunLesson orchestrates one calculation from raw input to rendered output.
//
// It submits the operands to the session, presents the trace at once and,
// when requested, enriches the lesson with the explanation and chat while
// the progress indicator runs. The explanation is presented only if the
// calculation is still current when the tutor answers.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - s: The session holding the lesson state.
//   - a, b: The raw operands as typed by the user.
//   - opts: Whether to explain and which label to show meanwhile.
//   - indicator: The progress indicator (use NullProgressIndicator for quiet mode).
//   - presenter: The presenter that renders the trace and explanation.
//   - out: The io.Writer for the rendered output.
//
// Returns:
//   - Snapshot: The state after the lesson.
//   - error: A validation error, ErrStale, or nil.
func RunLesson(ctx context.Context, s *Session, a, b string, opts LessonOptions, indicator ProgressIndicator, presenter ResultPresenter, out io.Writer) (Snapshot, error) {
	snap, err := s.Submit(a, b)
	if err != nil {
		return snap, err
	}
	presenter.PresentTrace(*snap.Trace, out)
	if !opts.Explain {
		return snap, nil
	}

	indicator.Start(opts.ProgressLabel)
	err = s.Enrich(ctx, snap.Generation)
	indicator.Stop()
	if err != nil {
		return s.Snapshot(), err
	}

	snap = s.Snapshot()
	presenter.PresentExplanation(snap.Explanation, out)
	return snap, nil
}

// AskAndPresent sends a chat question and renders the reply.
func AskAndPresent(ctx context.Context, s *Session, text string, indicator ProgressIndicator, label string, presenter ResultPresenter, out io.Writer) (Message, error) {
	indicator.Start(label)
	msg, err := s.Ask(ctx, text)
	indicator.Stop()
	if err != nil {
		return msg, err
	}
	presenter.PresentMessage(msg, out)
	return msg, nil
}
