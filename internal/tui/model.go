package tui

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/gcdtutor/internal/cli"
	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/tutor"
)

// Input fields, in focus order.
const (
	fieldA = iota
	fieldB
	fieldChat
	fieldCount
)

// Layout constants for the tutor screen.
const (
	headerHeight           = 1
	inputsHeight           = 3
	chatHeight             = 3
	statusHeight           = 1
	footerHeight           = 1
	minBodyHeight          = 6
	StepsPanelWidthPercent = 40
)

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// bodyHeight returns the available height for the steps and tutor panels.
func (l LayoutManager) bodyHeight() int {
	h := l.height - headerHeight - inputsHeight - chatHeight - statusHeight - footerHeight
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

// stepsWidth returns the width allocated to the steps panel.
func (l LayoutManager) stepsWidth() int {
	return l.width * StepsPanelWidthPercent / 100
}

// tutorWidth returns the width allocated to the explanation and chat panel.
func (l LayoutManager) tutorWidth() int {
	return l.width - l.stepsWidth()
}

// Messages produced by the collaborator commands. Each carries the
// generation it was started for so replies to a replaced calculation
// are dropped.
type (
	explanationMsg struct {
		generation uint64
		err        error
	}
	chatReplyMsg struct {
		generation uint64
		err        error
	}
	speechDoneMsg struct {
		err error
	}
)

// Options configures the tutor screen.
type Options struct {
	// Timeout bounds each collaborator call.
	Timeout time.Duration
	// Version is shown in the header.
	Version string
}

// Model is the root bubbletea model of the tutor screen.
type Model struct {
	header    HeaderModel
	inputs    [fieldCount]textinput.Model
	focus     int
	tutorView viewport.Model
	spinner   spinner.Model
	help      help.Model
	keymap    KeyMap

	LayoutManager

	ctx     context.Context
	cancel  context.CancelFunc
	session *orchestration.Session
	lang    tutor.Lang
	phrases tutor.Phrases
	labels  labels
	timeout time.Duration

	snap   orchestration.Snapshot
	status string
	failed bool
}

// NewModel creates the tutor screen over session.
func NewModel(parentCtx context.Context, session *orchestration.Session, opts Options) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	lang := session.Tutor().Lang()
	lbl := labelsFor(lang)

	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		inputs[i] = in
	}
	inputs[fieldA].Placeholder = "120"
	inputs[fieldA].CharLimit = 19
	inputs[fieldA].Width = 20
	inputs[fieldB].Placeholder = "45"
	inputs[fieldB].CharLimit = 19
	inputs[fieldB].Width = 20
	inputs[fieldChat].Placeholder = lbl.chatPlaceholder
	inputs[fieldChat].CharLimit = 500

	m := Model{
		header:    NewHeaderModel(opts.Version),
		inputs:    inputs,
		tutorView: viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusBusyStyle)),
		help:      help.New(),
		keymap:    DefaultKeyMap(),
		ctx:       ctx,
		cancel:    cancel,
		session:   session,
		lang:      lang,
		phrases:   session.Tutor().Phrases(),
		labels:    lbl,
		timeout:   opts.Timeout,
		snap:      session.Snapshot(),
	}
	m.setFocus(fieldA)
	m.refreshTutorView()
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case explanationMsg:
		if msg.generation != m.snap.Generation {
			return m, nil // reply for a replaced calculation
		}
		m.snap = m.session.Snapshot()
		m.reportDone(msg.err)
		m.refreshTutorView()
		if m.snap.CanAsk() {
			return m, m.setFocus(fieldChat)
		}
		return m, nil

	case chatReplyMsg:
		if msg.generation != m.snap.Generation {
			return m, nil
		}
		m.snap = m.session.Snapshot()
		m.reportDone(msg.err)
		m.refreshTutorView()
		return m, nil

	case speechDoneMsg:
		m.snap = m.session.Snapshot()
		m.reportDone(msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.NextField):
		return m, m.setFocus(m.nextField(1))

	case key.Matches(msg, m.keymap.PrevField):
		return m, m.setFocus(m.nextField(-1))

	case key.Matches(msg, m.keymap.Speak):
		return m.speak()

	case key.Matches(msg, m.keymap.ScrollUp), key.Matches(msg, m.keymap.ScrollDown):
		var cmd tea.Cmd
		m.tutorView, cmd = m.tutorView.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keymap.Submit):
		if m.focus == fieldChat {
			return m.ask()
		}
		return m.calculate()
	}

	return m.updateFocusedInput(msg)
}

// updateFocusedInput forwards msg to the focused field. Operand fields only
// accept digits and the chat field ignores typing while it is disabled.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		if m.focus == fieldChat && !m.snap.CanAsk() {
			return m, nil
		}
		if m.focus != fieldChat && k.Type == tea.KeyRunes && !allDigits(k.Runes) {
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func allDigits(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (m *Model) setFocus(field int) tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	m.focus = field
	return cmd
}

// nextField returns the next focusable field in direction dir, skipping
// the chat input while it is disabled.
func (m Model) nextField(dir int) int {
	f := m.focus
	for range fieldCount {
		f = (f + dir + fieldCount) % fieldCount
		if f == fieldChat && !m.snap.CanAsk() {
			continue
		}
		return f
	}
	return m.focus
}

func (m Model) busy() bool {
	return m.snap.Loading || m.snap.ChatPending || m.snap.Speaking
}

// reportDone sets the status line after a collaborator call.
func (m *Model) reportDone(err error) {
	switch {
	case err == nil, errors.Is(err, orchestration.ErrStale):
		m.status, m.failed = "", false
	default:
		m.status, m.failed = describeError(err), true
	}
}

func describeError(err error) string {
	var collabErr apperrors.CollaboratorError
	switch {
	case errors.As(err, &collabErr):
		return collabErr.Collaborator + " unavailable: " + collabErr.Cause.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return err.Error()
	}
}

func (m Model) calculate() (tea.Model, tea.Cmd) {
	snap, err := m.session.Submit(m.inputs[fieldA].Value(), m.inputs[fieldB].Value())
	if err != nil {
		m.status, m.failed = m.phrases.InvalidInput, true
		return m, nil
	}
	m.snap = snap
	m.status, m.failed = cli.ProgressLabel(m.lang), false
	m.inputs[fieldChat].Reset()
	m.refreshTutorView()
	return m, tea.Batch(m.spinner.Tick, m.enrichCmd(snap.Generation))
}

func (m Model) ask() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.inputs[fieldChat].Value())
	if text == "" || !m.snap.CanAsk() {
		return m, nil
	}
	m.inputs[fieldChat].Reset()
	m.snap.ChatPending = true
	m.snap.Transcript = append(m.snap.Transcript, orchestration.Message{Role: orchestration.RoleUser, Text: text})
	m.status, m.failed = cli.ProgressLabel(m.lang), false
	m.refreshTutorView()
	return m, tea.Batch(m.spinner.Tick, m.askCmd(m.snap.Generation, text))
}

func (m Model) speak() (tea.Model, tea.Cmd) {
	if !m.snap.CanSpeak() {
		return m, nil
	}
	m.snap.Speaking = true
	m.status, m.failed = cli.SpeechLabel(m.lang), false
	return m, tea.Batch(m.spinner.Tick, m.speakCmd())
}

func (m Model) callContext() (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(m.ctx)
	}
	return context.WithTimeout(m.ctx, m.timeout)
}

// enrichCmd fetches the explanation and opens the chat for gen.
func (m Model) enrichCmd(gen uint64) tea.Cmd {
	ctx, cancel := m.callContext()
	s := m.session
	return func() tea.Msg {
		defer cancel()
		return explanationMsg{generation: gen, err: s.Enrich(ctx, gen)}
	}
}

// askCmd sends text to the chat of gen.
func (m Model) askCmd(gen uint64, text string) tea.Cmd {
	ctx, cancel := m.callContext()
	s := m.session
	return func() tea.Msg {
		defer cancel()
		_, err := s.Ask(ctx, text)
		return chatReplyMsg{generation: gen, err: err}
	}
}

// speakCmd reads the explanation aloud and waits for playback to end.
func (m Model) speakCmd() tea.Cmd {
	ctx, cancel := m.callContext()
	s := m.session
	return func() tea.Msg {
		defer cancel()
		return speechDoneMsg{err: s.SpeakAloud(ctx)}
	}
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.help.Width = m.width
	m.tutorView.Width = max(m.tutorWidth()-4, 10)
	m.tutorView.Height = max(m.bodyHeight()-2, 1)
	m.inputs[fieldChat].Width = max(m.width-6, 10)
	m.refreshTutorView()
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, session *orchestration.Session, opts Options) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, session, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
