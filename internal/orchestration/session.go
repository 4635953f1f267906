package orchestration

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/gcdtutor/internal/audio"
	"github.com/agbru/gcdtutor/internal/euclid"
	"github.com/agbru/gcdtutor/internal/logging"
	"github.com/agbru/gcdtutor/internal/tutor"
)

// Session errors.
var (
	// ErrStale means the calculation the call belonged to has been replaced.
	ErrStale = errors.New("calculation superseded by a newer one")
	// ErrEmptyMessage rejects blank chat input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrChatBusy rejects chat input while a reply is pending.
	ErrChatBusy = errors.New("a chat reply is already pending")
	// ErrNoChat means there is no chat session for the current calculation.
	ErrNoChat = errors.New("no chat session available")
	// ErrSpeechBusy rejects speech while a previous request is running.
	ErrSpeechBusy = errors.New("speech already in progress")
	// ErrNothingToSay means there is no explanation to read aloud.
	ErrNothingToSay = errors.New("no explanation to read")
	// ErrExplainBusy rejects a second enrichment while the first is running.
	ErrExplainBusy = errors.New("explanation already in progress")
)

// Role identifies the author of a transcript entry.
type Role string

// Transcript roles.
const (
	RoleUser  Role = "user"
	RoleTutor Role = "tutor"
)

// Message is one transcript entry. Fallback marks the canned apology.
type Message struct {
	Role     Role   `json:"role"`
	Text     string `json:"text"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Generation    uint64        `json:"generation"`
	Trace         *euclid.Trace `json:"trace,omitempty"`
	Explanation   string        `json:"explanation,omitempty"`
	Transcript    []Message     `json:"transcript"`
	Loading       bool          `json:"loading"`
	ChatAvailable bool          `json:"chatAvailable"`
	ChatPending   bool          `json:"chatPending"`
	Speaking      bool          `json:"speaking"`
}

// CanAsk reports whether chat input should be enabled.
func (s Snapshot) CanAsk() bool {
	return s.ChatAvailable && !s.ChatPending
}

// CanSpeak reports whether the speech control should be enabled.
func (s Snapshot) CanSpeak() bool {
	return s.Explanation != "" && !s.Speaking
}

// Session is the state of one user's lesson. All methods are safe for
// concurrent use; collaborator calls run outside the lock and their results
// are applied only while their generation is current.
type Session struct {
	tutor  *tutor.Tutor
	player *audio.Player
	logger logging.Logger

	mu          sync.Mutex
	generation  uint64
	trace       *euclid.Trace
	explanation string
	transcript  []Message
	chat        *tutor.Chat
	loading     bool
	enriching   bool
	enriched    bool
	chatPending bool
	speaking    bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logging.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithPlayer enables local playback through SpeakAloud.
func WithPlayer(p *audio.Player) SessionOption {
	return func(s *Session) { s.player = p }
}

// NewSession creates an empty session over t.
func NewSession(t *tutor.Tutor, opts ...SessionOption) *Session {
	s := &Session{tutor: t, logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tutor returns the collaborator wrapper used by the session.
func (s *Session) Tutor() *tutor.Tutor { return s.tutor }

// Submit validates the raw operands and starts a new calculation. On a
// validation error the state is left untouched. On success the previous
// chat, explanation and transcript are dropped and Loading is set until
// Enrich completes for the returned generation.
func (s *Session) Submit(a, b string) (Snapshot, error) {
	x, y, err := euclid.ParseOperands(a, b)
	if err != nil {
		return s.Snapshot(), err
	}
	tr := euclid.Compute(x, y)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.trace = &tr
	s.explanation = ""
	s.transcript = nil
	s.chat = nil
	s.loading = true
	s.enriching = false
	s.enriched = false
	s.chatPending = false
	s.logger.Debug("calculation submitted",
		logging.Int64("a", x), logging.Int64("b", y),
		logging.Int64("gcd", tr.GCD), logging.Uint64("generation", s.generation))
	return s.snapshotLocked(), nil
}

// Enrich fetches the explanation and opens the chat for generation gen,
// concurrently. If another calculation was submitted meanwhile the results
// are discarded and ErrStale is returned. A chat failure leaves the session
// without chat and is not an error.
//
// Enrichment happens once per calculation: calling Enrich again for an
// enriched generation is a no-op that keeps the chat and its history, and
// a call made while the first is running gets ErrExplainBusy.
func (s *Session) Enrich(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	switch {
	case gen != s.generation || s.trace == nil:
		s.mu.Unlock()
		return ErrStale
	case s.enriched:
		s.mu.Unlock()
		return nil
	case s.enriching:
		s.mu.Unlock()
		return ErrExplainBusy
	}
	s.enriching = true
	tr := *s.trace
	s.mu.Unlock()

	var (
		explanation string
		chat        *tutor.Chat
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		explanation = s.tutor.Explain(gctx, tr)
		return nil
	})
	g.Go(func() error {
		c, err := s.tutor.StartChat(gctx, tr)
		if err != nil {
			s.logger.Error("chat unavailable for this calculation", err, logging.Uint64("generation", gen))
			return nil
		}
		chat = c
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding stale enrichment",
			logging.Uint64("generation", gen), logging.Uint64("current", s.generation))
		return ErrStale
	}
	s.explanation = explanation
	s.chat = chat
	s.loading = false
	s.enriching = false
	s.enriched = true
	return nil
}

// Ask sends a follow-up question. The user message is appended at once;
// exactly one tutor entry (answer or apology) follows when the reply
// arrives, unless the calculation was replaced in between, in which case
// the reply is dropped and ErrStale is returned.
func (s *Session) Ask(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	switch {
	case s.chatPending:
		s.mu.Unlock()
		return Message{}, ErrChatBusy
	case s.chat == nil:
		s.mu.Unlock()
		return Message{}, ErrNoChat
	}
	gen := s.generation
	chat := s.chat
	s.chatPending = true
	s.transcript = append(s.transcript, Message{Role: RoleUser, Text: text})
	s.mu.Unlock()

	reply := chat.Send(ctx, text)
	msg := Message{Role: RoleTutor, Text: reply.Text, Fallback: reply.Fallback}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return msg, ErrStale
	}
	s.chatPending = false
	s.transcript = append(s.transcript, msg)
	return msg, nil
}

// Speak synthesizes the current explanation. Only one request may run at a
// time; the busy flag is cleared whatever the outcome. Audio for a
// calculation that was replaced during synthesis is dropped with ErrStale.
func (s *Session) Speak(ctx context.Context) ([]byte, error) {
	text, gen, err := s.beginSpeech()
	if err != nil {
		return nil, err
	}
	defer s.endSpeech()
	pcm, err := s.tutor.Speak(ctx, text)
	if err != nil {
		return nil, err
	}
	if !s.isCurrent(gen) {
		s.logger.Debug("discarding stale speech", logging.Uint64("generation", gen))
		return nil, ErrStale
	}
	return pcm, nil
}

// SpeakAloud synthesizes the explanation and plays it on the configured
// player, keeping the speech control busy until playback ends.
func (s *Session) SpeakAloud(ctx context.Context) error {
	if s.player == nil {
		return errors.New("no audio player configured")
	}
	text, gen, err := s.beginSpeech()
	if err != nil {
		return err
	}
	defer s.endSpeech()
	pcm, err := s.tutor.Speak(ctx, text)
	if err != nil {
		return err
	}
	if !s.isCurrent(gen) {
		s.logger.Debug("discarding stale speech", logging.Uint64("generation", gen))
		return ErrStale
	}
	return s.player.Play(ctx, pcm)
}

func (s *Session) beginSpeech() (string, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.explanation == "" {
		return "", 0, ErrNothingToSay
	}
	if s.speaking {
		return "", 0, ErrSpeechBusy
	}
	s.speaking = true
	return s.explanation, s.generation, nil
}

func (s *Session) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

func (s *Session) endSpeech() {
	s.mu.Lock()
	s.speaking = false
	s.mu.Unlock()
}

// Generation returns the current calculation counter.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Generation:    s.generation,
		Explanation:   s.explanation,
		Transcript:    make([]Message, len(s.transcript)),
		Loading:       s.loading,
		ChatAvailable: s.chat != nil,
		ChatPending:   s.chatPending,
		Speaking:      s.speaking,
	}
	copy(snap.Transcript, s.transcript)
	if s.trace != nil {
		tr := *s.trace
		tr.Steps = append([]euclid.Step(nil), s.trace.Steps...)
		snap.Trace = &tr
	}
	return snap
}
