package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/gcdtutor/internal/audio"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/ui"
)

// REPLConfig tunes the interactive mode.
type REPLConfig struct {
	// Timeout bounds each command that calls the tutor.
	Timeout time.Duration
	// Explain requests the explanation and chat after each calculation.
	Explain bool
}

// REPL is an interactive session: calculations, follow-up questions and
// speech share one orchestration.Session.
type REPL struct {
	config    REPLConfig
	session   *orchestration.Session
	presenter CLIResultPresenter
	indicator orchestration.ProgressIndicator
	in        io.Reader
	out       io.Writer
}

// NewREPL creates a new REPL over session.
func NewREPL(session *orchestration.Session, config REPLConfig) *REPL {
	return &REPL{
		config:    config,
		session:   session,
		presenter: CLIResultPresenter{Phrases: session.Tutor().Phrases()},
		in:        os.Stdin,
		out:       os.Stdout,
	}
}

// SetInput replaces standard input.
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput replaces standard output.
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// SetIndicator replaces the spinner shown while the tutor works.
func (r *REPL) SetIndicator(ind orchestration.ProgressIndicator) {
	r.indicator = ind
}

func (r *REPL) progress() orchestration.ProgressIndicator {
	if r.indicator == nil {
		r.indicator = NewSpinnerIndicator(r.out)
	}
	return r.indicator
}

// replCommands drives both the help screen and the aliases accepted by
// processCommand.
var replCommands = []struct {
	names []string
	usage string
	help  string
}{
	{[]string{"calc", "c"}, "calc <a> <b>", "trace the Euclidean algorithm on a and b"},
	{[]string{"ask", "?"}, "ask <text>", "ask the tutor about the current calculation"},
	{[]string{"speak", "s"}, "speak", "read the explanation aloud"},
	{[]string{"steps"}, "steps", "list the steps again"},
	{[]string{"status", "st"}, "status", "show the session state"},
	{[]string{"help", "h"}, "help", "show this list"},
	{[]string{"exit", "quit", "q"}, "exit", "leave"},
}

// command resolves an alias to the command's first name, or "".
func command(word string) string {
	word = strings.ToLower(word)
	for _, c := range replCommands {
		for _, n := range c.names {
			if n == word {
				return c.names[0]
			}
		}
	}
	return ""
}

// Start reads commands until "exit", EOF or ctx is done. A final line
// without a newline is still executed.
func (r *REPL) Start(ctx context.Context) {
	fmt.Fprintf(r.out, "%s%s➗ GCD Tutor%s  %s(pgcd> prompt, \"help\" for commands)%s\n\n",
		ui.ColorCyan(), ui.ColorBold(), ui.ColorReset(), ui.ColorDim(), ui.ColorReset())
	r.printHelp()

	lines := bufio.NewScanner(r.in)
	for ctx.Err() == nil {
		fmt.Fprint(r.out, ui.ColorGreen()+"pgcd> "+ui.ColorReset())
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
			}
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
		if line := strings.TrimSpace(lines.Text()); line != "" && !r.processCommand(ctx, line) {
			return
		}
	}
}

func (r *REPL) printHelp() {
	for _, c := range replCommands {
		fmt.Fprintf(r.out, "  %s%-14s%s %s\n", ui.ColorYellow(), c.usage, ui.ColorReset(), c.help)
	}
	fmt.Fprintln(r.out, "  Two numbers start a calculation; any other text is a question.")
	fmt.Fprintln(r.out)
}

// processCommand runs one line and reports whether the loop continues.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	rest := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch command(fields[0]) {
	case "calc":
		r.cmdCalc(ctx, fields[1:])
	case "ask":
		r.cmdAsk(ctx, rest)
	case "speak":
		r.cmdSpeak(ctx)
	case "steps":
		r.cmdSteps()
	case "status":
		r.cmdStatus()
	case "help":
		r.printHelp()
	case "exit":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		if len(fields) == 2 && isInteger(fields[0]) && isInteger(fields[1]) {
			r.cmdCalc(ctx, fields)
		} else {
			r.cmdAsk(ctx, input)
		}
	}
	return true
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func (r *REPL) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.config.Timeout)
}

func (r *REPL) cmdCalc(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintf(r.out, "%sUsage: calc <a> <b>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	fmt.Fprintln(r.out)
	opts := orchestration.LessonOptions{
		Explain:       r.config.Explain,
		ProgressLabel: ProgressLabel(r.session.Tutor().Lang()),
	}
	_, err := orchestration.RunLesson(ctx, r.session, args[0], args[1], opts, r.progress(), r.presenter, r.out)
	if err != nil {
		r.printError(err)
	}
}

func (r *REPL) cmdAsk(ctx context.Context, text string) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := orchestration.AskAndPresent(ctx, r.session, text, r.progress(),
		ProgressLabel(r.session.Tutor().Lang()), r.presenter, r.out)
	if err != nil {
		r.printError(err)
	}
}

func (r *REPL) cmdSpeak(ctx context.Context) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ind := r.progress()
	ind.Start(SpeechLabel(r.session.Tutor().Lang()))
	err := r.session.SpeakAloud(ctx)
	ind.Stop()
	if err != nil {
		r.printError(err)
	}
}

func (r *REPL) cmdSteps() {
	snap := r.session.Snapshot()
	if snap.Trace == nil {
		fmt.Fprintf(r.out, "No calculation yet. Try %scalc 120 45%s.\n", ui.ColorYellow(), ui.ColorReset())
		return
	}
	for i, s := range snap.Trace.Steps {
		fmt.Fprintln(r.out, FormatStep(r.presenter.Phrases, i+1, s))
	}
}

func (r *REPL) cmdStatus() {
	snap := r.session.Snapshot()
	fmt.Fprintf(r.out, "%sSession state:%s\n", ui.ColorBold(), ui.ColorReset())
	if snap.Trace != nil {
		fmt.Fprintf(r.out, "  Calculation:  %sgcd(%d, %d) = %d%s\n",
			ui.ColorCyan(), snap.Trace.A, snap.Trace.B, snap.Trace.GCD, ui.ColorReset())
	} else {
		fmt.Fprintf(r.out, "  Calculation:  %snone%s\n", ui.ColorDim(), ui.ColorReset())
	}
	fmt.Fprintf(r.out, "  Language:     %s%s%s\n", ui.ColorCyan(), r.session.Tutor().Lang(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Explanation:  %s\n", onOff(snap.Explanation != ""))
	fmt.Fprintf(r.out, "  Chat:         %s (%d messages)\n", onOff(snap.ChatAvailable), len(snap.Transcript))
	fmt.Fprintf(r.out, "  Timeout:      %s%s%s\n", ui.ColorYellow(), r.config.Timeout, ui.ColorReset())
}

func onOff(b bool) string {
	if b {
		return ui.ColorGreen() + "available" + ui.ColorReset()
	}
	return ui.ColorDim() + "unavailable" + ui.ColorReset()
}

// printError reports a command failure without leaving the loop.
func (r *REPL) printError(err error) {
	switch {
	case errors.Is(err, orchestration.ErrNoChat):
		fmt.Fprintf(r.out, "%sNo chat yet. Run %scalc <a> <b>%s%s first.%s\n",
			ui.ColorYellow(), ui.ColorBold(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	case errors.Is(err, orchestration.ErrNothingToSay):
		fmt.Fprintf(r.out, "%sNothing to read yet.%s\n", ui.ColorYellow(), ui.ColorReset())
	case errors.Is(err, orchestration.ErrSpeechBusy), errors.Is(err, audio.ErrPlaybackActive):
		fmt.Fprintf(r.out, "%sSpeech already in progress.%s\n", ui.ColorYellow(), ui.ColorReset())
	case errors.Is(err, orchestration.ErrEmptyMessage), errors.Is(err, orchestration.ErrChatBusy):
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorYellow(), err, ui.ColorReset())
	default:
		r.presenter.HandleError(err, r.out)
	}
}
