package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/gcdtutor/internal/format"
	"github.com/agbru/gcdtutor/internal/orchestration"
)

// SpinnerRefreshRate defines the animation frequency of the progress spinner.
const SpinnerRefreshRate = 120 * time.Millisecond

// FormatExecutionDuration formats a time.Duration for display.
func FormatExecutionDuration(d time.Duration) string {
	return format.Elapsed(d)
}

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// It defines the essential controls for a spinner: starting, stopping, and
// updating its status message.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, options...)
	return &realSpinner{s}
}

// SpinnerIndicator implements orchestration.ProgressIndicator with a
// terminal spinner. It records the elapsed time of the last run so the
// caller can report it.
type SpinnerIndicator struct {
	spinner Spinner
	started time.Time
	elapsed time.Duration
}

var _ orchestration.ProgressIndicator = (*SpinnerIndicator)(nil)

// NewSpinnerIndicator creates an indicator that draws on out.
func NewSpinnerIndicator(out io.Writer) *SpinnerIndicator {
	return &SpinnerIndicator{spinner: newSpinner(spinner.WithWriter(out))}
}

// Start shows the spinner with label as its suffix.
func (si *SpinnerIndicator) Start(label string) {
	si.started = time.Now()
	si.spinner.UpdateSuffix(" " + label)
	si.spinner.Start()
}

// Stop hides the spinner.
func (si *SpinnerIndicator) Stop() {
	si.spinner.Stop()
	si.elapsed = time.Since(si.started)
}

// Elapsed returns how long the last Start/Stop cycle lasted.
func (si *SpinnerIndicator) Elapsed() time.Duration {
	return si.elapsed
}
