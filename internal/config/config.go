// Package config defines the application configuration and parses it from
// command-line flags, GCDTUTOR_* environment variables and an optional YAML
// file, in that order of precedence.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "GCDTUTOR_"

// Mode selects the presentation layer.
type Mode string

// Available modes.
const (
	ModeCLI   Mode = "cli"
	ModeREPL  Mode = "repl"
	ModeTUI   Mode = "tui"
	ModeServe Mode = "serve"
)

// Default values.
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice       = "Kore"
	DefaultLang        = "fr"
	DefaultTimeout     = 2 * time.Minute
	DefaultRetries     = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultListen      = ":8080"
	DefaultLogLevel    = "info"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// A and B are the raw operands; they are validated by euclid.ParseOperands.
	A, B string
	// Mode selects one-shot CLI, REPL, TUI or HTTP server.
	Mode Mode
	// Explain requests the explanation and chat after the trace.
	Explain bool
	// Speak plays the explanation aloud in CLI mode.
	Speak bool
	// Lang is the prompt and fallback language ("fr" or "en").
	Lang string
	// Model is the text model used for explanations and chat.
	Model string
	// SpeechModel is the text-to-speech model.
	SpeechModel string
	// Voice is the prebuilt voice name.
	Voice string
	// APIKey authenticates against the Gemini API.
	APIKey string
	// Timeout bounds a whole one-shot run and every collaborator call.
	Timeout time.Duration
	// Retries is the maximum number of attempts per collaborator call.
	Retries int
	// RetryDelay is the wait before the second attempt; later waits grow
	// exponentially.
	RetryDelay time.Duration
	// Listen is the HTTP listen address in serve mode.
	Listen string
	// AllowedOrigins lists the CORS origins accepted in serve mode.
	AllowedOrigins []string
	// Quiet prints only the GCD in one-shot mode.
	Quiet bool
	// NoColor disables colored output.
	NoColor bool
	// LogLevel is a zerolog level name.
	LogLevel string
	// ConfigFile is the YAML file that was loaded, if any.
	ConfigFile string
}

// Default returns the configuration used when nothing is set.
func Default() AppConfig {
	return AppConfig{
		Mode:           ModeCLI,
		Explain:        true,
		Lang:           DefaultLang,
		Model:          DefaultModel,
		SpeechModel:    DefaultSpeechModel,
		Voice:          DefaultVoice,
		Timeout:        DefaultTimeout,
		Retries:        DefaultRetries,
		RetryDelay:     DefaultRetryDelay,
		Listen:         DefaultListen,
		AllowedOrigins: []string{"*"},
		LogLevel:       DefaultLogLevel,
	}
}

// ParseConfig parses the command-line arguments, then applies the YAML file
// and environment overrides for every flag that was not given explicitly.
//
// Parameters:
//   - programName: The name of the program, used in usage messages.
//   - args: The command-line arguments without the program name.
//   - errorWriter: The writer for usage and parse errors.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp for -h, a ConfigError for invalid values.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	cfg := Default()
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	var (
		repl, tui, serve bool
		noExplain        bool
		mode             string
		origins          string
	)
	fs.StringVar(&cfg.A, "a", "", "First operand (positive integer).")
	fs.StringVar(&cfg.B, "b", "", "Second operand (positive integer).")
	fs.StringVar(&mode, "mode", string(ModeCLI), "Presentation mode: cli, repl, tui or serve.")
	fs.BoolVar(&repl, "repl", false, "Start the interactive line mode.")
	fs.BoolVar(&tui, "tui", false, "Start the terminal dashboard.")
	fs.BoolVar(&serve, "serve", false, "Serve the web widget and JSON API.")
	fs.BoolVar(&noExplain, "no-explain", false, "Show the trace only, without the tutor.")
	fs.BoolVar(&cfg.Speak, "speak", false, "Read the explanation aloud (one-shot mode).")
	fs.StringVar(&cfg.Lang, "lang", DefaultLang, "Language of prompts and messages: fr or en.")
	fs.StringVar(&cfg.Model, "model", DefaultModel, "Gemini model for explanations and chat.")
	fs.StringVar(&cfg.SpeechModel, "speech-model", DefaultSpeechModel, "Gemini text-to-speech model.")
	fs.StringVar(&cfg.Voice, "voice", DefaultVoice, "Prebuilt voice name.")
	fs.StringVar(&cfg.APIKey, "api-key", "", "Gemini API key (default from GEMINI_API_KEY).")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum duration of a one-shot run.")
	fs.IntVar(&cfg.Retries, "retries", DefaultRetries, "Maximum attempts per tutor call.")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", DefaultRetryDelay, "Initial wait between two attempts (0 retries at once).")
	fs.StringVar(&cfg.Listen, "listen", DefaultListen, "HTTP listen address in serve mode.")
	fs.StringVar(&origins, "allowed-origins", "*", "Comma-separated CORS origins in serve mode.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the GCD (one-shot mode).")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file (default $XDG_CONFIG_HOME/gcdtutor/config.yaml).")
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags] [a b]\n\nTrace the Euclidean algorithm and ask a tutor about it.\n\nFlags:\n", programName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	cfg.Mode = Mode(mode)
	switch {
	case serve:
		cfg.Mode = ModeServe
	case tui:
		cfg.Mode = ModeTUI
	case repl:
		cfg.Mode = ModeREPL
	}
	cfg.Explain = !noExplain
	cfg.AllowedOrigins = splitList(origins)

	if rest := fs.Args(); len(rest) > 0 {
		if len(rest) != 2 || isFlagSetAny(fs, "a", "b") {
			return AppConfig{}, apperrors.NewConfigError("expected exactly two positional operands, got %d", len(rest))
		}
		cfg.A, cfg.B = rest[0], rest[1]
	}

	explicitFile := isFlagSet(fs, "config")
	path := cfg.ConfigFile
	if !explicitFile {
		path = DefaultFilePath()
	}
	fc, loaded, err := LoadFile(path, explicitFile)
	if err != nil {
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if loaded {
		cfg.ConfigFile = path
		if err := applyFile(&cfg, fc, fs); err != nil {
			return AppConfig{}, err
		}
	} else {
		cfg.ConfigFile = ""
	}

	applyEnvOverrides(&cfg, fs)
	applyAPIKeyFallback(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c AppConfig) Validate() error {
	switch c.Mode {
	case ModeCLI, ModeREPL, ModeTUI, ModeServe:
	default:
		return apperrors.NewConfigError("unknown mode %q (use cli, repl, tui or serve)", c.Mode)
	}
	switch c.Lang {
	case "fr", "en":
	default:
		return apperrors.NewConfigError("unsupported language %q (use fr or en)", c.Lang)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 1 {
		return apperrors.NewConfigError("retries must be at least 1, got %d", c.Retries)
	}
	if c.RetryDelay < 0 {
		return apperrors.NewConfigError("retry delay must not be negative, got %s", c.RetryDelay)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	if c.Mode == ModeCLI && (c.A == "" || c.B == "") {
		return apperrors.NewConfigError("missing operands: pass -a and -b, or choose --repl, --tui or --serve")
	}
	if c.NeedsTutor() && c.APIKey == "" {
		return apperrors.NewConfigError("missing Gemini API key: set GEMINI_API_KEY, %sAPI_KEY or --api-key (or use --no-explain)", EnvPrefix)
	}
	if c.Speak && !c.Explain {
		return apperrors.NewConfigError("--speak needs the explanation; remove --no-explain")
	}
	if c.Speak && c.Quiet {
		return apperrors.NewConfigError("--speak cannot be combined with --quiet")
	}
	return nil
}

// NeedsTutor reports whether the run calls the generative-language service.
// A quiet one-shot run prints the GCD only and never does.
func (c AppConfig) NeedsTutor() bool {
	if c.Mode != ModeCLI {
		return true
	}
	return c.Explain && !c.Quiet
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
