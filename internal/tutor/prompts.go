package tutor

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/agbru/gcdtutor/internal/euclid"
)

// Lang selects the language of prompts, fallbacks and labels.
type Lang string

// Supported languages. French is the default.
const (
	French  Lang = "fr"
	English Lang = "en"
)

// ParseLang validates a language code. An empty string selects French.
func ParseLang(s string) (Lang, error) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case "", French:
		return French, nil
	case English:
		return English, nil
	default:
		return "", fmt.Errorf("unsupported language %q (use fr or en)", s)
	}
}

// Phrases groups every user-visible sentence for one language.
type Phrases struct {
	// ExplainFallback replaces the explanation when the service fails.
	ExplainFallback string
	// ExplainEmpty replaces the explanation when the service answers with nothing.
	ExplainEmpty string
	// ChatFallback is appended to the transcript when a chat reply fails.
	ChatFallback string
	// InvalidInput is shown when the operands are rejected.
	InvalidInput string
	// Divides renders a step heading, e.g. "120 divisé par 45".
	Divides string
	// Remainder labels the remainder column.
	Remainder string
	// ZeroReached marks the terminal step.
	ZeroReached string
	// Result renders the final banner, e.g. "PGCD = 15".
	Result string

	speechPrefix string
	explain      *template.Template
	system       *template.Template
}

var phrases = map[Lang]Phrases{
	French: {
		ExplainFallback: "Désolé, je ne peux pas expliquer pour le moment.",
		ExplainEmpty:    "Erreur lors de la génération.",
		ChatFallback:    "Oups, j'ai eu un petit problème technique. Peux-tu reformuler ?",
		InvalidInput:    "Veuillez entrer deux nombres entiers positifs.",
		Divides:         "%d divisé par %d",
		Remainder:       "Reste",
		ZeroReached:     "Reste nul atteint !",
		Result:          "PGCD = %d",
		speechPrefix:    "Lis ceci de manière pédagogique : ",
		explain: template.Must(template.New("explain.fr").Parse(
			"En tant qu'expert en mathématiques (Professeur), explique le calcul du PGCD de {{.A}} et {{.B}} " +
				"que nous venons de trouver ({{.GCD}}). L'algorithme d'Euclide a été utilisé avec les étapes suivantes : " +
				"{{.Steps}}. Donne une explication pédagogique, claire et concise en français.")),
		system: template.Must(template.New("system.fr").Parse(
			"Tu es un tuteur en mathématiques spécialisé dans l'arithmétique. L'utilisateur vient de calculer " +
				"le PGCD de {{.A}} et {{.B}} et a obtenu {{.GCD}}. Réponds à ses questions sur ce calcul ou sur le PGCD " +
				"en général. Sois précis, utilise un langage mathématique correct mais accessible. " +
				"Utilise le format Markdown pour tes réponses.")),
	},
	English: {
		ExplainFallback: "Sorry, I can't explain this right now.",
		ExplainEmpty:    "The explanation could not be generated.",
		ChatFallback:    "Oops, I ran into a technical problem. Could you rephrase?",
		InvalidInput:    "Please enter two positive integers.",
		Divides:         "%d divided by %d",
		Remainder:       "Remainder",
		ZeroReached:     "Zero remainder reached!",
		Result:          "GCD = %d",
		speechPrefix:    "Read this aloud like a teacher: ",
		explain: template.Must(template.New("explain.en").Parse(
			"As a mathematics expert (teacher), explain the computation of the GCD of {{.A}} and {{.B}} " +
				"that we just found ({{.GCD}}). Euclid's algorithm was used with the following steps: " +
				"{{.Steps}}. Give a clear, concise and educational explanation in English.")),
		system: template.Must(template.New("system.en").Parse(
			"You are a mathematics tutor specialised in arithmetic. The user just computed the GCD of " +
				"{{.A}} and {{.B}} and got {{.GCD}}. Answer their questions about this computation or about the " +
				"GCD in general. Be precise, use correct but accessible mathematical language. " +
				"Format your answers in Markdown.")),
	},
}

// PhrasesFor returns the phrase set of lang, falling back to French.
func PhrasesFor(lang Lang) Phrases {
	if p, ok := phrases[lang]; ok {
		return p
	}
	return phrases[French]
}

type promptData struct {
	A, B, GCD int64
	Steps     string
}

func newPromptData(tr euclid.Trace) promptData {
	steps := make([]string, len(tr.Steps))
	for i, s := range tr.Steps {
		steps[i] = s.String()
	}
	return promptData{A: tr.A, B: tr.B, GCD: tr.GCD, Steps: strings.Join(steps, ", ")}
}

// ExplainPrompt renders the explanation request for tr.
func (p Phrases) ExplainPrompt(tr euclid.Trace) (string, error) {
	return render(p.explain, newPromptData(tr))
}

// SystemInstruction renders the chat priming for tr.
func (p Phrases) SystemInstruction(tr euclid.Trace) (string, error) {
	return render(p.system, newPromptData(tr))
}

// SpeechPrompt prefixes text with the reading instruction.
func (p Phrases) SpeechPrompt(text string) string {
	return p.speechPrefix + text
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}
