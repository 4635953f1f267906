package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/mock/gomock"

	"github.com/agbru/gcdtutor/internal/audio"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/tutor"
	"github.com/agbru/gcdtutor/internal/tutor/mocks"
)

type countingSink struct{ samples atomic.Int64 }

func (s *countingSink) Play(_ context.Context, pcm []float32) error {
	s.samples.Add(int64(len(pcm)))
	return nil
}

func newTestModel(t *testing.T, opts ...orchestration.SessionOption) (Model, *mocks.MockProvider, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	tu := tutor.New(provider, tutor.WithRetry(tutor.RetryConfig{MaxAttempts: 1}))
	m := NewModel(context.Background(), orchestration.NewSession(tu, opts...), Options{Timeout: time.Second})
	m, _ = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, provider, ctrl
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return send(m, tea.KeyMsg{Type: k})
}

// awaitMsg runs cmd (expanding batches) and returns the first message of
// type T it produces.
func awaitMsg[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	ch := make(chan tea.Msg, 32)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			ch <- msg
		}()
	}
	run(cmd)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if v, ok := msg.(T); ok {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("no %T produced", zero)
			return zero
		}
	}
}

// calculate types the operands and submits them.
func calculate(m Model, a, b string) (Model, tea.Cmd) {
	m.setFocus(fieldA)
	m.inputs[fieldA].Reset()
	m.inputs[fieldB].Reset()
	m = typeText(m, a)
	m, _ = press(m, tea.KeyTab)
	m = typeText(m, b)
	return press(m, tea.KeyEnter)
}

// explained returns a model whose calculation (120, 45) is fully enriched.
func explained(t *testing.T, provider *mocks.MockProvider, chat tutor.ChatSession, m Model) Model {
	t.Helper()
	provider.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Le PGCD est **15**.", nil)
	provider.EXPECT().NewChat(gomock.Any(), gomock.Any()).Return(chat, nil)
	m, cmd := calculate(m, "120", "45")
	m, _ = send(m, awaitMsg[explanationMsg](t, cmd))
	return m
}

func TestModel_InitialView(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	m := NewModel(context.Background(),
		orchestration.NewSession(tutor.New(mocks.NewMockProvider(ctrl))), Options{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() before sizing = %q", got)
	}
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "Entrez deux entiers positifs") {
		t.Errorf("View() missing start hint:\n%s", m.View())
	}
}

func TestModel_CalculateShowsTraceAtOnce(t *testing.T) {
	t.Parallel()
	m, provider, ctrl := newTestModel(t)
	provider.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Voici l'explication.", nil)
	provider.EXPECT().NewChat(gomock.Any(), gomock.Any()).Return(mocks.NewMockChatSession(ctrl), nil)

	m, cmd := calculate(m, "120", "45")
	if m.snap.Trace == nil || m.snap.Trace.GCD != 15 {
		t.Fatalf("trace = %+v, want GCD 15", m.snap.Trace)
	}
	if !m.snap.Loading {
		t.Error("Loading = false right after submit")
	}
	view := m.View()
	for _, want := range []string{"120 divisé par 45", "Reste 30", "PGCD = 15"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m, _ = send(m, awaitMsg[explanationMsg](t, cmd))
	if m.snap.Loading || m.snap.Explanation != "Voici l'explication." {
		t.Errorf("after explanation: loading=%v explanation=%q", m.snap.Loading, m.snap.Explanation)
	}
	if m.focus != fieldChat {
		t.Errorf("focus = %d, want chat", m.focus)
	}
}

func TestModel_InvalidInputKeepsState(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t)

	m = typeText(m, "x1y")
	if got := m.inputs[fieldA].Value(); got != "1" {
		t.Errorf("operand field accepted non-digits: %q", got)
	}

	m, cmd := press(m, tea.KeyEnter)
	if cmd != nil {
		t.Error("invalid input started a collaborator call")
	}
	if !m.failed || m.status != tutor.PhrasesFor(tutor.French).InvalidInput {
		t.Errorf("status = %q (failed=%v)", m.status, m.failed)
	}
	if m.snap.Trace != nil {
		t.Error("invalid input produced a trace")
	}
}

func TestModel_StaleExplanationDropped(t *testing.T) {
	t.Parallel()
	m, provider, ctrl := newTestModel(t)
	provider.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Pour 7 et 7.", nil)
	provider.EXPECT().NewChat(gomock.Any(), gomock.Any()).Return(mocks.NewMockChatSession(ctrl), nil)

	m, _ = calculate(m, "120", "45")
	first := m.snap.Generation
	m, cmd := calculate(m, "7", "7")

	m, _ = send(m, explanationMsg{generation: first})
	if !m.snap.Loading || m.snap.Trace.GCD != 7 {
		t.Fatalf("stale reply changed state: loading=%v gcd=%d", m.snap.Loading, m.snap.Trace.GCD)
	}

	m, _ = send(m, awaitMsg[explanationMsg](t, cmd))
	if m.snap.Explanation != "Pour 7 et 7." {
		t.Errorf("Explanation = %q", m.snap.Explanation)
	}
}

func TestModel_ChatFlow(t *testing.T) {
	t.Parallel()
	m, provider, ctrl := newTestModel(t)
	chat := mocks.NewMockChatSession(ctrl)
	m = explained(t, provider, chat, m)

	chat.EXPECT().Send(gomock.Any(), "Pourquoi 15 ?").Return("Car 15 divise 30.", nil)
	m = typeText(m, "Pourquoi 15 ?")
	m, cmd := press(m, tea.KeyEnter)
	if !m.snap.ChatPending || m.snap.CanAsk() {
		t.Fatal("chat input still enabled while a reply is pending")
	}
	if len(m.snap.Transcript) != 1 || m.snap.Transcript[0].Role != orchestration.RoleUser {
		t.Fatalf("transcript = %+v, want the question only", m.snap.Transcript)
	}
	m = typeText(m, "zzz")
	if m.inputs[fieldChat].Value() != "" {
		t.Error("disabled chat input accepted typing")
	}

	m, _ = send(m, awaitMsg[chatReplyMsg](t, cmd))
	if len(m.snap.Transcript) != 2 || m.snap.Transcript[1].Text != "Car 15 divise 30." {
		t.Errorf("transcript = %+v", m.snap.Transcript)
	}
	if !m.snap.CanAsk() {
		t.Error("chat input not re-enabled")
	}
	if !strings.Contains(m.View(), "Pourquoi 15 ?") {
		t.Error("question missing from the view")
	}
}

func TestModel_ChatFallback(t *testing.T) {
	t.Parallel()
	m, provider, ctrl := newTestModel(t)
	chat := mocks.NewMockChatSession(ctrl)
	m = explained(t, provider, chat, m)

	chat.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", errors.New("boom"))
	m = typeText(m, "Et ensuite ?")
	m, cmd := press(m, tea.KeyEnter)
	m, _ = send(m, awaitMsg[chatReplyMsg](t, cmd))

	if len(m.snap.Transcript) != 2 {
		t.Fatalf("transcript has %d entries, want 2", len(m.snap.Transcript))
	}
	last := m.snap.Transcript[1]
	if !last.Fallback || last.Text != tutor.PhrasesFor(tutor.French).ChatFallback {
		t.Errorf("last entry = %+v, want the apology", last)
	}
	if !m.snap.CanAsk() {
		t.Error("chat input not re-enabled after a failure")
	}
}

func TestModel_EmptyChatIgnored(t *testing.T) {
	t.Parallel()
	m, provider, ctrl := newTestModel(t)
	m = explained(t, provider, mocks.NewMockChatSession(ctrl), m)

	m = typeText(m, "   ")
	m, cmd := press(m, tea.KeyEnter)
	if cmd != nil || len(m.snap.Transcript) != 0 {
		t.Error("blank question was sent")
	}
}

func TestModel_Speak(t *testing.T) {
	t.Parallel()
	sink := &countingSink{}
	m, provider, ctrl := newTestModel(t, orchestration.WithPlayer(audio.NewPlayer(sink)))

	if _, cmd := press(m, tea.KeyCtrlS); cmd != nil {
		t.Error("speech started without an explanation")
	}

	m = explained(t, provider, mocks.NewMockChatSession(ctrl), m)
	provider.EXPECT().Synthesize(gomock.Any(), gomock.Any()).Return([]byte{0, 0, 0, 1, 0, 2}, nil)

	m, cmd := press(m, tea.KeyCtrlS)
	if !m.snap.Speaking {
		t.Fatal("Speaking = false after ctrl+s")
	}
	if _, again := press(m, tea.KeyCtrlS); again != nil {
		t.Error("second ctrl+s started another speech")
	}

	m, _ = send(m, awaitMsg[speechDoneMsg](t, cmd))
	if m.snap.Speaking || m.failed {
		t.Errorf("after speech: speaking=%v failed=%v status=%q", m.snap.Speaking, m.failed, m.status)
	}
	if got := sink.samples.Load(); got != 3 {
		t.Errorf("played %d samples, want 3", got)
	}
}

func TestModel_SpeechFailureReported(t *testing.T) {
	t.Parallel()
	m, provider, ctrl := newTestModel(t, orchestration.WithPlayer(audio.NewPlayer(audio.DiscardSink{})))
	m = explained(t, provider, mocks.NewMockChatSession(ctrl), m)
	provider.EXPECT().Synthesize(gomock.Any(), gomock.Any()).Return(nil, errors.New("quota"))

	m, cmd := press(m, tea.KeyCtrlS)
	m, _ = send(m, awaitMsg[speechDoneMsg](t, cmd))
	if !m.failed || !strings.Contains(m.status, "speech") {
		t.Errorf("status = %q (failed=%v), want a speech error", m.status, m.failed)
	}
	if m.snap.Speaking {
		t.Error("speech control not re-enabled after a failure")
	}
}

func TestModel_FocusSkipsDisabledChat(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t)
	m, _ = press(m, tea.KeyTab)
	if m.focus != fieldB {
		t.Fatalf("focus = %d, want b", m.focus)
	}
	m, _ = press(m, tea.KeyTab)
	if m.focus != fieldA {
		t.Errorf("focus = %d, want a (chat disabled)", m.focus)
	}
	m, _ = press(m, tea.KeyShiftTab)
	if m.focus != fieldB {
		t.Errorf("focus = %d, want b", m.focus)
	}
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t)
	m, cmd := press(m, tea.KeyEsc)
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc did not quit")
	}
	if m.ctx.Err() == nil {
		t.Error("context not canceled on quit")
	}
}

func TestLayoutManager(t *testing.T) {
	t.Parallel()
	l := LayoutManager{width: 100, height: 40}
	if l.stepsWidth()+l.tutorWidth() != 100 {
		t.Errorf("panels do not fill the width: %d + %d", l.stepsWidth(), l.tutorWidth())
	}
	small := LayoutManager{width: 40, height: 5}
	if small.bodyHeight() != minBodyHeight {
		t.Errorf("bodyHeight() = %d, want minimum %d", small.bodyHeight(), minBodyHeight)
	}
}
