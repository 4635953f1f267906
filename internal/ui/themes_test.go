package ui

import "testing"

func TestSetTheme(t *testing.T) {
	prev := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(prev) })

	tests := []struct {
		name string
		want string
	}{
		{"notebook", "notebook"},
		{"none", "none"},
		{"chalkboard", "chalkboard"},
		{"unknown", "chalkboard"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) -> %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitTheme_NoColor(t *testing.T) {
	prev := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(prev) })

	InitTheme(true)
	if ColorsEnabled() {
		t.Error("ColorsEnabled() = true after InitTheme(true)")
	}
	if GetCurrentTUITheme() != NoColorTUITheme {
		t.Error("TUI theme not disabled")
	}
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("color helpers emit codes without colors")
	}
}

func TestInitTheme_NoColorEnv(t *testing.T) {
	prev := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(prev) })
	t.Setenv("NO_COLOR", "1")

	InitTheme(false)
	if ColorsEnabled() {
		t.Error("NO_COLOR not honored")
	}
}

func TestColorHelpersFollowTheme(t *testing.T) {
	prev := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(prev) })

	SetCurrentTheme(NotebookTheme)
	if ColorGreen() != NotebookTheme.Success || ColorDim() != NotebookTheme.Secondary {
		t.Error("color helpers do not read the active theme")
	}
	if !ColorsEnabled() {
		t.Error("ColorsEnabled() = false with the notebook theme")
	}
}
