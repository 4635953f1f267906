package tutor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/euclid"
	"github.com/agbru/gcdtutor/internal/logging"
)

// Collaborator names used in errors, spans and metrics.
const (
	CollaboratorExplanation = "explanation"
	CollaboratorSpeech      = "speech"
	CollaboratorChat        = "chat"
)

// Outcomes reported to the Recorder.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeEmpty = "empty"
)

var (
	// ErrNoAudio is returned when the speech response carries no audio payload.
	ErrNoAudio = errors.New("response contains no audio")
	// ErrNoText is returned when there is nothing to synthesize.
	ErrNoText = errors.New("no text to synthesize")
)

const tracerName = "github.com/agbru/gcdtutor/internal/tutor"

// Recorder receives one observation per collaborator call.
type Recorder interface {
	ObserveCollaborator(collaborator, outcome string, elapsed time.Duration)
	CountFallback(collaborator string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCollaborator(string, string, time.Duration) {}
func (nopRecorder) CountFallback(string)                              {}

// Reply is the outcome of one chat exchange. Fallback is true when Text is
// the canned apology rather than a model answer.
type Reply struct {
	Text     string
	Fallback bool
}

// Tutor wraps a Provider with the application's prompts, fallbacks, retries
// and telemetry.
type Tutor struct {
	provider Provider
	lang     Lang
	phrases  Phrases
	logger   logging.Logger
	tracer   oteltrace.Tracer
	recorder Recorder
	retry    RetryConfig
}

// Option configures a Tutor.
type Option func(*Tutor)

// WithLang selects the language of prompts and fallbacks.
func WithLang(lang Lang) Option {
	return func(t *Tutor) {
		t.lang = lang
		t.phrases = PhrasesFor(lang)
	}
}

// WithLogger sets the logger used to report collaborator failures.
func WithLogger(l logging.Logger) Option {
	return func(t *Tutor) { t.logger = l }
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(tr oteltrace.Tracer) Option {
	return func(t *Tutor) { t.tracer = tr }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(t *Tutor) { t.recorder = r }
}

// WithRetry sets the retry policy for every collaborator call.
func WithRetry(cfg RetryConfig) Option {
	return func(t *Tutor) { t.retry = cfg }
}

// New creates a Tutor over p. Defaults: French, no logging, global tracer,
// DefaultRetryConfig.
func New(p Provider, opts ...Option) *Tutor {
	t := &Tutor{
		provider: p,
		lang:     French,
		phrases:  PhrasesFor(French),
		logger:   logging.NopLogger{},
		tracer:   otel.Tracer(tracerName),
		recorder: nopRecorder{},
		retry:    DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Lang returns the configured language.
func (t *Tutor) Lang() Lang { return t.lang }

// Phrases returns the phrase set for the configured language.
func (t *Tutor) Phrases() Phrases { return t.phrases }

func (t *Tutor) start(ctx context.Context, name string, tr euclid.Trace) (context.Context, oteltrace.Span) {
	return t.tracer.Start(ctx, name, oteltrace.WithAttributes(
		attribute.Int64("gcd.a", tr.A),
		attribute.Int64("gcd.b", tr.B),
		attribute.Int64("gcd.result", tr.GCD),
		attribute.Int("gcd.steps", len(tr.Steps)),
		attribute.String("tutor.lang", string(t.lang)),
	))
}

func (t *Tutor) finish(span oteltrace.Span, collaborator, outcome string, started time.Time, err error) {
	t.recorder.ObserveCollaborator(collaborator, outcome, time.Since(started))
	span.SetAttributes(attribute.String("tutor.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Explain asks the service to explain tr. It never fails: on error the
// localized fallback is returned, on an empty answer the "generation error"
// sentence.
func (t *Tutor) Explain(ctx context.Context, tr euclid.Trace) string {
	ctx, span := t.start(ctx, "tutor.explain", tr)
	defer span.End()
	started := time.Now()

	prompt, err := t.phrases.ExplainPrompt(tr)
	if err == nil {
		var text string
		text, err = withRetry(ctx, t.retry, func(ctx context.Context) (string, error) {
			return t.provider.Generate(ctx, prompt)
		})
		if err == nil {
			if strings.TrimSpace(text) == "" {
				t.finish(span, CollaboratorExplanation, OutcomeEmpty, started, nil)
				t.recorder.CountFallback(CollaboratorExplanation)
				return t.phrases.ExplainEmpty
			}
			t.finish(span, CollaboratorExplanation, OutcomeOK, started, nil)
			return text
		}
	}

	t.finish(span, CollaboratorExplanation, OutcomeError, started, err)
	t.recorder.CountFallback(CollaboratorExplanation)
	t.logger.Error("explanation failed, using fallback", err,
		logging.Int64("a", tr.A), logging.Int64("b", tr.B))
	return t.phrases.ExplainFallback
}

// Speak synthesizes text as raw PCM16 audio. Failures, including an empty
// payload, are returned as apperrors.CollaboratorError.
func (t *Tutor) Speak(ctx context.Context, text string) ([]byte, error) {
	ctx, span := t.tracer.Start(ctx, "tutor.speak", oteltrace.WithAttributes(
		attribute.Int("tutor.text_length", len(text)),
		attribute.String("tutor.lang", string(t.lang)),
	))
	defer span.End()
	started := time.Now()

	if strings.TrimSpace(text) == "" {
		err := apperrors.CollaboratorError{Collaborator: CollaboratorSpeech, Cause: ErrNoText}
		t.finish(span, CollaboratorSpeech, OutcomeEmpty, started, err)
		return nil, err
	}

	prompt := t.phrases.SpeechPrompt(text)
	pcm, err := withRetry(ctx, t.retry, func(ctx context.Context) ([]byte, error) {
		return t.provider.Synthesize(ctx, prompt)
	})
	if err == nil && len(pcm) == 0 {
		err = ErrNoAudio
	}
	if err != nil {
		wrapped := apperrors.CollaboratorError{Collaborator: CollaboratorSpeech, Cause: err}
		t.finish(span, CollaboratorSpeech, OutcomeError, started, wrapped)
		t.logger.Error("speech synthesis failed", err)
		return nil, wrapped
	}
	span.SetAttributes(attribute.Int("tutor.audio_bytes", len(pcm)))
	t.finish(span, CollaboratorSpeech, OutcomeOK, started, nil)
	return pcm, nil
}

// StartChat opens a chat session primed with the result of tr.
func (t *Tutor) StartChat(ctx context.Context, tr euclid.Trace) (*Chat, error) {
	ctx, span := t.start(ctx, "tutor.chat.start", tr)
	defer span.End()
	started := time.Now()

	instruction, err := t.phrases.SystemInstruction(tr)
	var session ChatSession
	if err == nil {
		session, err = withRetry(ctx, t.retry, func(ctx context.Context) (ChatSession, error) {
			return t.provider.NewChat(ctx, instruction)
		})
	}
	if err != nil {
		wrapped := apperrors.CollaboratorError{Collaborator: CollaboratorChat, Cause: err}
		t.finish(span, CollaboratorChat, OutcomeError, started, wrapped)
		t.logger.Error("chat session unavailable", err,
			logging.Int64("a", tr.A), logging.Int64("b", tr.B))
		return nil, wrapped
	}
	t.finish(span, CollaboratorChat, OutcomeOK, started, nil)
	return &Chat{tutor: t, session: session, trace: tr}, nil
}

// Chat is a conversation about one trace. Send calls are serialized so the
// history on the service side stays in order.
type Chat struct {
	tutor   *Tutor
	session ChatSession
	trace   euclid.Trace

	mu sync.Mutex
}

// Trace returns the calculation this chat is about.
func (c *Chat) Trace() euclid.Trace { return c.trace }

// Send forwards text and returns exactly one reply. On failure or an empty
// answer the reply is the apology with Fallback set.
func (c *Chat) Send(ctx context.Context, text string) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tutor
	ctx, span := t.start(ctx, "tutor.chat.send", c.trace)
	defer span.End()
	started := time.Now()

	answer, err := withRetry(ctx, t.retry, func(ctx context.Context) (string, error) {
		return c.session.Send(ctx, text)
	})
	switch {
	case err != nil:
		t.finish(span, CollaboratorChat, OutcomeError, started, err)
		t.logger.Error("chat reply failed, using fallback", err)
	case strings.TrimSpace(answer) == "":
		t.finish(span, CollaboratorChat, OutcomeEmpty, started, nil)
	default:
		t.finish(span, CollaboratorChat, OutcomeOK, started, nil)
		return Reply{Text: answer}
	}
	t.recorder.CountFallback(CollaboratorChat)
	return Reply{Text: t.phrases.ChatFallback, Fallback: true}
}
