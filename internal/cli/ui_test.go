package cli

import (
	"os"
	"testing"
	"time"

	"github.com/agbru/gcdtutor/internal/ui"
)

func TestMain(m *testing.M) {
	ui.InitTheme(true)
	os.Exit(m.Run())
}

// MockSpinner for testing
type MockSpinner struct {
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.suffix = suffix
}

func TestSpinnerIndicator(t *testing.T) {
	t.Parallel()
	mock := &MockSpinner{}
	ind := &SpinnerIndicator{spinner: mock}

	ind.Start("Le professeur réfléchit...")
	if !mock.started {
		t.Error("spinner not started")
	}
	if mock.suffix != " Le professeur réfléchit..." {
		t.Errorf("suffix = %q", mock.suffix)
	}
	time.Sleep(2 * time.Millisecond)
	ind.Stop()
	if !mock.stopped {
		t.Error("spinner not stopped")
	}
	if ind.Elapsed() <= 0 {
		t.Errorf("Elapsed() = %s, want > 0", ind.Elapsed())
	}
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500\u00b5s"},
		{150 * time.Millisecond, "150ms"},
		{2500 * time.Millisecond, "2.5s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
