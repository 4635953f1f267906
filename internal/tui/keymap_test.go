package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	t.Parallel()
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Submit", km.Submit},
		{"NextField", km.NextField},
		{"PrevField", km.PrevField},
		{"Speak", km.Speak},
		{"ScrollUp", km.ScrollUp},
		{"ScrollDown", km.ScrollDown},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			if !b.binding.Enabled() {
				t.Errorf("expected %s binding to be enabled", b.name)
			}
			if len(b.binding.Keys()) == 0 {
				t.Errorf("expected %s binding to have at least one key", b.name)
			}
		})
	}
}

// Plain letters must reach the text inputs.
func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	t.Parallel()
	km := DefaultKeyMap()
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				if len([]rune(k)) == 1 {
					t.Errorf("binding %q uses printable key %q", b.Help().Desc, k)
				}
			}
		}
	}
}

func TestDefaultKeyMap_SpeakIsCtrlS(t *testing.T) {
	t.Parallel()
	keys := DefaultKeyMap().Speak.Keys()
	if len(keys) != 1 || keys[0] != "ctrl+s" {
		t.Errorf("Speak keys = %v, want [ctrl+s]", keys)
	}
}
