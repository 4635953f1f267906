package app

import (
	"context"
	"io"

	"github.com/agbru/gcdtutor/internal/cli"
	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/logging"
	"github.com/agbru/gcdtutor/internal/orchestration"
)

// runCalculate orchestrates a one-shot lesson: trace, then optionally the
// explanation and the spoken reading.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()

	logger := logging.NewConsoleLogger(a.ErrWriter, "cli", a.Config.NoColor)
	session, err := a.newSession(ctx, logger)
	if err != nil {
		return a.fail(err)
	}
	t := session.Tutor()
	presenter := cli.CLIResultPresenter{Phrases: t.Phrases(), Quiet: a.Config.Quiet}

	// Skip verbose output in quiet mode
	var (
		indicator orchestration.ProgressIndicator = orchestration.NullProgressIndicator{}
		spin      *cli.SpinnerIndicator
	)
	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		spin = cli.NewSpinnerIndicator(out)
		indicator = spin
	}

	opts := orchestration.LessonOptions{
		Explain:       a.Config.Explain && !a.Config.Quiet,
		ProgressLabel: cli.ProgressLabel(t.Lang()),
	}
	if _, err := orchestration.RunLesson(ctx, session, a.Config.A, a.Config.B, opts, indicator, presenter, out); err != nil {
		return presenter.HandleError(err, out)
	}
	if opts.Explain && spin != nil {
		cli.DisplayTutorTime(t.Lang(), spin.Elapsed(), out)
	}

	if a.Config.Speak {
		indicator.Start(cli.SpeechLabel(t.Lang()))
		err := session.SpeakAloud(ctx)
		indicator.Stop()
		if err != nil {
			return presenter.HandleError(err, out)
		}
	}
	return apperrors.ExitSuccess
}
