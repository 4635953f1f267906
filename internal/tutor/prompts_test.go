package tutor

import (
	"strings"
	"testing"

	"github.com/agbru/gcdtutor/internal/euclid"
)

func TestParseLang(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Lang
		wantErr bool
	}{
		{"", French, false},
		{"fr", French, false},
		{" EN ", English, false},
		{"de", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLang(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLang(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLang(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhrasesFor_UnknownFallsBackToFrench(t *testing.T) {
	t.Parallel()
	if got := PhrasesFor("xx").InvalidInput; got != "Veuillez entrer deux nombres entiers positifs." {
		t.Errorf("InvalidInput = %q", got)
	}
}

func TestPhrases_AllLanguagesComplete(t *testing.T) {
	t.Parallel()
	tr := euclid.Compute(7, 7)
	for lang, p := range phrases {
		for name, s := range map[string]string{
			"ExplainFallback": p.ExplainFallback,
			"ExplainEmpty":    p.ExplainEmpty,
			"ChatFallback":    p.ChatFallback,
			"InvalidInput":    p.InvalidInput,
			"Divides":         p.Divides,
			"Remainder":       p.Remainder,
			"ZeroReached":     p.ZeroReached,
			"Result":          p.Result,
		} {
			if s == "" {
				t.Errorf("%s: %s is empty", lang, name)
			}
		}
		prompt, err := p.ExplainPrompt(tr)
		if err != nil || !strings.Contains(prompt, "7 % 7 = 0") {
			t.Errorf("%s: ExplainPrompt() = %q, %v", lang, prompt, err)
		}
		system, err := p.SystemInstruction(tr)
		if err != nil || !strings.Contains(system, "7") {
			t.Errorf("%s: SystemInstruction() = %q, %v", lang, system, err)
		}
	}
}
