package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/gcdtutor/internal/audio"
	"github.com/agbru/gcdtutor/internal/audio/otosink"
	"github.com/agbru/gcdtutor/internal/cli"
	"github.com/agbru/gcdtutor/internal/config"
	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/gemini"
	"github.com/agbru/gcdtutor/internal/logging"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/server"
	"github.com/agbru/gcdtutor/internal/tui"
	"github.com/agbru/gcdtutor/internal/tutor"
	"github.com/agbru/gcdtutor/internal/ui"
)

// Application represents the gcdtutor application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// Provider replaces the Gemini client when set.
	Provider tutor.Provider
	// Sink replaces the default audio output when set.
	Sink audio.Sink
	// In replaces standard input in REPL mode when set.
	In io.Reader
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithProvider sets the generative-language provider, bypassing Gemini.
func WithProvider(p tutor.Provider) AppOption {
	return func(a *Application) { a.Provider = p }
}

// WithSink sets the audio output used for local playback.
func WithSink(s audio.Sink) AppOption {
	return func(a *Application) { a.Sink = s }
}

// WithInput sets the reader the REPL reads commands from.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "gcdtutor"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	level, err := zerolog.ParseLevel(a.Config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch a.Config.Mode {
	case config.ModeREPL:
		return a.runREPL(ctx, out)
	case config.ModeTUI:
		return a.runTUI(ctx)
	case config.ModeServe:
		return a.runServe(ctx)
	default:
		return a.runCalculate(ctx, out)
	}
}

// newTutor builds the tutor for this run. The Gemini client is only created
// when the run talks to the service.
func (a *Application) newTutor(ctx context.Context, logger logging.Logger, extra ...tutor.Option) (*tutor.Tutor, error) {
	provider := a.Provider
	if provider == nil && a.Config.NeedsTutor() {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:      a.Config.APIKey,
			Model:       a.Config.Model,
			SpeechModel: a.Config.SpeechModel,
			Voice:       a.Config.Voice,
		})
		if err != nil {
			return nil, err
		}
		provider = client
	}
	opts := []tutor.Option{
		tutor.WithLang(tutor.Lang(a.Config.Lang)),
		tutor.WithLogger(logger),
		tutor.WithRetry(tutor.RetryConfig{
			MaxAttempts: a.Config.Retries,
			Backoff:     a.Config.RetryDelay,
			ShouldRetry: gemini.IsRetryable,
		}),
	}
	return tutor.New(provider, append(opts, extra...)...), nil
}

// newSession builds a session with local playback.
func (a *Application) newSession(ctx context.Context, logger logging.Logger) (*orchestration.Session, error) {
	t, err := a.newTutor(ctx, logger)
	if err != nil {
		return nil, err
	}
	sink := a.Sink
	if sink == nil {
		sink = otosink.New()
	}
	return orchestration.NewSession(t,
		orchestration.WithLogger(logger),
		orchestration.WithPlayer(audio.NewPlayer(sink))), nil
}

// fail reports an error that happened before any presenter exists.
func (a *Application) fail(err error) int {
	fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
	return apperrors.ExitCodeFor(err)
}

// runREPL starts the interactive line mode.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	logger := logging.NewConsoleLogger(a.ErrWriter, "repl", a.Config.NoColor)
	session, err := a.newSession(ctx, logger)
	if err != nil {
		return a.fail(err)
	}
	repl := cli.NewREPL(session, cli.REPLConfig{Timeout: a.Config.Timeout, Explain: a.Config.Explain})
	repl.SetOutput(out)
	if a.In != nil {
		repl.SetInput(a.In)
	}
	repl.Start(ctx)
	return apperrors.ExitSuccess
}

// runTUI launches the terminal dashboard. Log lines would corrupt the
// alternate screen, so the tutor runs without a logger.
func (a *Application) runTUI(ctx context.Context) int {
	session, err := a.newSession(ctx, logging.NopLogger{})
	if err != nil {
		return a.fail(err)
	}
	return tui.Run(ctx, session, tui.Options{Timeout: a.Config.Timeout, Version: Version})
}

// runServe serves the web widget until the context is canceled.
func (a *Application) runServe(ctx context.Context) int {
	logger := logging.NewLogger(a.ErrWriter, "server")
	metrics := server.NewMetrics()
	t, err := a.newTutor(ctx, logger, tutor.WithRecorder(metrics))
	if err != nil {
		return a.fail(err)
	}

	security := server.DefaultSecurityConfig()
	security.AllowedOrigins = a.Config.AllowedOrigins
	srv, err := server.New(t, server.Config{
		Addr:     a.Config.Listen,
		Timeout:  a.Config.Timeout,
		Security: security,
		Version:  Version,
	}, server.WithLogger(logger), server.WithMetrics(metrics))
	if err != nil {
		return a.fail(err)
	}
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
